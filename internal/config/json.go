package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Duration accepts either a Go duration string or integer nanoseconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return errors.New("invalid duration")
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// jsonConfig is used only for unmarshalling. Pointer fields tell unset
// keys apart from zero values.
type jsonConfig struct {
	ClientID      *string `json:"client_id"`
	Scope         *string `json:"scope"`
	DeviceCodeURL *string `json:"device_code_url"`
	TokenURL      *string `json:"token_url"`

	ManifestURL  *string `json:"manifest_url"`
	APIBaseURL   *string `json:"api_url"`
	GitHubAPIURL *string `json:"github_api_url"`
	GitHubWebURL *string `json:"github_web_url"`
	IssueRepo    *string `json:"issue_repo"`

	DataDir     *string `json:"data_dir"`
	LogFile     *string `json:"log_file"`
	MetricsAddr *string `json:"metrics_addr"`

	HTTPTimeout        *Duration `json:"http_timeout"`
	AuthTimeout        *Duration `json:"auth_timeout"`
	VerifyPollInterval *Duration `json:"verify_poll_interval"`
	VerifyTimeout      *Duration `json:"verify_timeout"`
	ChallengeTTL       *Duration `json:"challenge_ttl"`
	SessionTTL         *Duration `json:"session_ttl"`
	SourceConcurrency  *int      `json:"source_concurrency"`
}

func parseJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.ClientID, jc.ClientID)
	setString(&cfg.Scope, jc.Scope)
	setString(&cfg.DeviceCodeURL, jc.DeviceCodeURL)
	setString(&cfg.TokenURL, jc.TokenURL)
	setString(&cfg.ManifestURL, jc.ManifestURL)
	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.GitHubAPIURL, jc.GitHubAPIURL)
	setString(&cfg.GitHubWebURL, jc.GitHubWebURL)
	setString(&cfg.IssueRepo, jc.IssueRepo)
	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.LogFile, jc.LogFile)
	setString(&cfg.MetricsAddr, jc.MetricsAddr)

	setDuration(&cfg.HTTPTimeout, jc.HTTPTimeout)
	setDuration(&cfg.AuthTimeout, jc.AuthTimeout)
	setDuration(&cfg.VerifyPollInterval, jc.VerifyPollInterval)
	setDuration(&cfg.VerifyTimeout, jc.VerifyTimeout)
	setDuration(&cfg.ChallengeTTL, jc.ChallengeTTL)
	setDuration(&cfg.SessionTTL, jc.SessionTTL)

	if jc.SourceConcurrency != nil {
		cfg.SourceConcurrency = *jc.SourceConcurrency
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
