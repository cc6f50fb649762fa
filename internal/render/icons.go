package render

import "strings"

const defaultIcon = "📦"

// iconTable is matched in order against the lower-cased key; the first
// keyword contained in the key wins.
var iconTable = []struct {
	keyword string
	icon    string
}{
	{"adguard", "🛡️"},
	{"unbound", "🌐"},
	{"suricata", "👁️"},
	{"crowdsec", "🤖"},
	{"minecraft", "⛏️"},
	{"tor", "🧅"},
	{"bitcoin", "₿"},
	{"ethereum", "Ξ"},
	{"monero", "🔒"},
	{"ntop", "📊"},
	{"pihole", "🕳️"},
	{"wireguard", "🔐"},
	{"nginx", "🌐"},
	{"home-assistant", "🏠"},
	{"paper", "📄"},
}

func Icon(key string) string {
	key = strings.ToLower(key)
	for _, e := range iconTable {
		if strings.Contains(key, e.keyword) {
			return e.icon
		}
	}
	return defaultIcon
}
