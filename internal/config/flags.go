package config

import (
	"os"

	"github.com/spf13/pflag"
)

// Flags holds the command-line overrides registered on a flag set. Only
// flags the user actually set take part in Load.
type Flags struct {
	fs         *pflag.FlagSet
	configFile string
	values     Config
}

// BindFlags registers the global ci5dev flags on fs.
func BindFlags(fs *pflag.FlagSet) *Flags {
	d := Defaults()
	f := &Flags{fs: fs}

	fs.StringVarP(&f.configFile, "config", "c", "", "path to a JSON config file")
	fs.StringVar(&f.values.ManifestURL, "manifest-url", d.ManifestURL, "primary cork manifest URL")
	fs.StringVar(&f.values.APIBaseURL, "api-url", d.APIBaseURL, "ci5 network API base URL")
	fs.StringVar(&f.values.GitHubAPIURL, "github-api-url", d.GitHubAPIURL, "GitHub REST API base URL")
	fs.StringVar(&f.values.GitHubWebURL, "github-url", d.GitHubWebURL, "GitHub web base URL")
	fs.StringVar(&f.values.ClientID, "client-id", d.ClientID, "GitHub OAuth app client id")
	fs.StringVar(&f.values.DataDir, "data-dir", d.DataDir, "directory for session state and logs")
	fs.StringVar(&f.values.LogFile, "log-file", "", "log file path (default <data-dir>/ci5dev.log)")
	fs.StringVar(&f.values.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	fs.DurationVar(&f.values.HTTPTimeout, "http-timeout", d.HTTPTimeout, "timeout for each outbound HTTP request")
	fs.IntVar(&f.values.SourceConcurrency, "source-concurrency", d.SourceConcurrency, "maximum concurrent external source fetches")

	return f
}

// Load resolves the final configuration from defaults, the JSON file,
// the environment and explicitly set flags.
func (f *Flags) Load() (*Config, error) {
	cfg := Defaults()

	path := f.configFile
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := parseJSON(cfg, path); err != nil {
			return nil, err
		}
	}

	parseEnv(cfg)
	f.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (f *Flags) apply(cfg *Config) {
	stringFlags := map[string]*string{
		"manifest-url":   &cfg.ManifestURL,
		"api-url":        &cfg.APIBaseURL,
		"github-api-url": &cfg.GitHubAPIURL,
		"github-url":     &cfg.GitHubWebURL,
		"client-id":      &cfg.ClientID,
		"data-dir":       &cfg.DataDir,
		"log-file":       &cfg.LogFile,
		"metrics-addr":   &cfg.MetricsAddr,
	}
	sources := map[string]string{
		"manifest-url":   f.values.ManifestURL,
		"api-url":        f.values.APIBaseURL,
		"github-api-url": f.values.GitHubAPIURL,
		"github-url":     f.values.GitHubWebURL,
		"client-id":      f.values.ClientID,
		"data-dir":       f.values.DataDir,
		"log-file":       f.values.LogFile,
		"metrics-addr":   f.values.MetricsAddr,
	}
	for name, dst := range stringFlags {
		if f.fs.Changed(name) {
			*dst = sources[name]
		}
	}

	if f.fs.Changed("http-timeout") {
		cfg.HTTPTimeout = f.values.HTTPTimeout
	}
	if f.fs.Changed("source-concurrency") {
		cfg.SourceConcurrency = f.values.SourceConcurrency
	}
}
