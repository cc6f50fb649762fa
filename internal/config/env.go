package config

import "os"

const (
	EnvConfigFile  = "CI5DEV_CONFIG"
	EnvManifestURL = "CI5DEV_MANIFEST_URL"
	EnvAPIURL      = "CI5DEV_API_URL"
	EnvClientID    = "CI5DEV_CLIENT_ID"
	EnvDataDir     = "CI5DEV_DATA_DIR"
)

func parseEnv(cfg *Config) {
	for name, dst := range map[string]*string{
		EnvManifestURL: &cfg.ManifestURL,
		EnvAPIURL:      &cfg.APIBaseURL,
		EnvClientID:    &cfg.ClientID,
		EnvDataDir:     &cfg.DataDir,
	} {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*dst = v
		}
	}
}
