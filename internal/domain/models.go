package domain

import "time"

type AuditResult string

const (
	AuditSafe       AuditResult = "SAFE"
	AuditSuspicious AuditResult = "SUSPICIOUS"
	AuditMalicious  AuditResult = "MALICIOUS"
	AuditUnknown    AuditResult = ""
)

type Category string

const (
	CategoryOfficial   Category = "official"
	CategoryCommunity  Category = "community"
	CategoryCellar     Category = "cellar"
	CategoryThirdParty Category = "third-party"
)

// Cork is one registry entry. Entries are rebuilt wholesale on every
// fetch and never mutated afterwards.
type Cork struct {
	Key            string
	Repo           string
	Description    string
	RAM            string
	Audit          AuditResult
	InstallCommand string
	ThirdParty     bool
	Author         string
	SourceID       string
}

type RegistryMeta struct {
	SigningAuthority string
}

// SourceCollection is the normalized result of fetching one external
// source. Err is set when the fetch failed; Entries is then empty.
type SourceCollection struct {
	Source  ExternalSource
	Name    string
	Entries *Collection
	Err     error
}

type Registry struct {
	Meta      RegistryMeta
	Official  *Collection
	Community *Collection
	Cellar    *Collection
	Sources   []SourceCollection
	Merged    *Collection
	Offline   bool
}

// NewRegistry returns a registry with every collection present and empty.
func NewRegistry() *Registry {
	return &Registry{
		Official:  NewCollection(),
		Community: NewCollection(),
		Cellar:    NewCollection(),
		Merged:    NewCollection(),
	}
}

// Source returns the fetched collection for an external source id.
func (r *Registry) Source(id string) (SourceCollection, bool) {
	for _, sc := range r.Sources {
		if sc.Source.ID == id {
			return sc, true
		}
	}
	return SourceCollection{}, false
}

type ExternalSource struct {
	ID      string    `json:"id"`
	URL     string    `json:"url"`
	Name    string    `json:"name,omitempty"`
	Enabled bool      `json:"enabled"`
	AddedAt time.Time `json:"added_at"`
}

type User struct {
	Login     string
	AvatarURL string
}

type VerificationStatus struct {
	Verified   bool
	HardwareID string
}

// DeviceCode is what the user needs to complete a device authorization
// in the browser.
type DeviceCode struct {
	UserCode        string
	VerificationURI string
	Interval        int
	ExpiresAt       time.Time
}

type SignalStatus string

const (
	SignalStable   SignalStatus = "STABLE"
	SignalUnstable SignalStatus = "UNSTABLE"
	SignalBroken   SignalStatus = "BROKEN"
)

type TelemetrySignal struct {
	Author    string
	RAMMB     int
	Status    string
	CreatedAt time.Time
	URL       string
}

type SignalSummary struct {
	Cork         string
	Count        int
	AverageRAMMB int
	Statuses     map[string]int
	Signals      []TelemetrySignal
	NoSignal     bool
}

type Vote struct {
	Cork      string       `json:"cork"`
	RAMMB     int          `json:"ram_mb"`
	Status    SignalStatus `json:"status"`
	HWID      string       `json:"hwid"`
	GitHub    string       `json:"github"`
	Timestamp time.Time    `json:"timestamp"`
}

type Submission struct {
	Name        string
	Repo        string
	Description string
	RAM         string
}
