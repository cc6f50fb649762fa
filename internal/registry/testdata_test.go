package registry

const testManifest = `{
  "meta": {"signing_authority": "ci5-root-2025"},
  "official": {
    "adguard": {"repo": "dreamswag/cork-adguard", "desc": "Network-wide ad blocking", "ram": "150MB", "audit": {"audit_result": "SAFE"}},
    "unbound": {"repo": "dreamswag/cork-unbound", "desc": "Validating DNS resolver", "ram": "64MB"},
    "suricata": {"repo": "dreamswag/cork-suricata", "desc": "IDS/IPS engine", "ram": 1024, "audit": {"audit_result": "suspicious"}}
  },
  "community": {
    "tor-relay": {"repo": "someone/cork-tor", "desc": "Run a Tor middle relay", "ram": "256MB", "install": "ci5 install tor-relay --edge"},
    "minecraft": {"repo": "gamer/cork-mc", "desc": "Paper server", "ram": "2GB", "audit": {"audit_result": "MALICIOUS"}}
  },
  "cellar": {
    "privacy-pack": {"repo": "dreamswag/cellar-privacy", "desc": "Bundle of tor and adguard", "ram": "512MB"}
  }
}`
