package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	ghoauth "golang.org/x/oauth2/github"
)

const (
	defaultClientID = "Ov23liSwq6nuhqFog2xr"
	defaultDirName  = ".ci5dev"
)

type Config struct {
	ClientID      string
	Scope         string
	DeviceCodeURL string
	TokenURL      string

	ManifestURL  string
	APIBaseURL   string
	GitHubAPIURL string
	GitHubWebURL string
	IssueRepo    string

	DataDir     string
	LogFile     string
	MetricsAddr string

	HTTPTimeout        time.Duration
	AuthTimeout        time.Duration
	VerifyPollInterval time.Duration
	VerifyTimeout      time.Duration
	ChallengeTTL       time.Duration
	SessionTTL         time.Duration
	SourceConcurrency  int
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func (c *Config) LoadDefaults() {
	c.ClientID = defaultClientID
	c.Scope = "public_repo"
	c.DeviceCodeURL = ghoauth.Endpoint.DeviceAuthURL
	c.TokenURL = ghoauth.Endpoint.TokenURL

	c.ManifestURL = "https://ci5.dev/corks.json"
	c.APIBaseURL = "https://api.ci5.network"
	c.GitHubAPIURL = "https://api.github.com/"
	c.GitHubWebURL = "https://github.com"
	c.IssueRepo = "dreamswag/ci5.dev"

	if home, err := os.UserHomeDir(); err == nil {
		c.DataDir = filepath.Join(home, defaultDirName)
	} else {
		c.DataDir = defaultDirName
	}

	c.HTTPTimeout = 10 * time.Second
	c.AuthTimeout = 5 * time.Minute
	c.VerifyPollInterval = 2 * time.Second
	c.VerifyTimeout = 5 * time.Minute
	c.ChallengeTTL = 5 * time.Minute
	sessionHours := math.Pi
	c.SessionTTL = time.Duration(sessionHours * float64(time.Hour))
	c.SourceConcurrency = 4
}

// LogPath is the log file location, defaulting into the data directory.
func (c *Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.DataDir, "ci5dev.log")
}

func (c *Config) Validate() error {
	var errs []error

	required := map[string]string{
		"client id":       c.ClientID,
		"device code url": c.DeviceCodeURL,
		"token url":       c.TokenURL,
		"manifest url":    c.ManifestURL,
		"api url":         c.APIBaseURL,
		"github api url":  c.GitHubAPIURL,
		"github web url":  c.GitHubWebURL,
		"issue repo":      c.IssueRepo,
		"data dir":        c.DataDir,
	}
	for name, v := range required {
		if v == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", name))
		}
	}

	durations := map[string]time.Duration{
		"http timeout":         c.HTTPTimeout,
		"auth timeout":         c.AuthTimeout,
		"verify poll interval": c.VerifyPollInterval,
		"verify timeout":       c.VerifyTimeout,
		"challenge ttl":        c.ChallengeTTL,
		"session ttl":          c.SessionTTL,
	}
	for name, d := range durations {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}

	if c.SourceConcurrency < 1 {
		errs = append(errs, fmt.Errorf("source concurrency must be at least 1, got %d", c.SourceConcurrency))
	}

	return errors.Join(errs...)
}
