package config

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ci5dev.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{EnvConfigFile, EnvManifestURL, EnvAPIURL, EnvClientID, EnvDataDir} {
		t.Setenv(name, "")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, "Ov23liSwq6nuhqFog2xr", cfg.ClientID)
	assert.Equal(t, "public_repo", cfg.Scope)
	assert.Equal(t, "https://github.com/login/device/code", cfg.DeviceCodeURL)
	assert.Equal(t, "https://github.com/login/oauth/access_token", cfg.TokenURL)
	assert.Equal(t, "https://api.ci5.network", cfg.APIBaseURL)
	assert.Equal(t, 2*time.Second, cfg.VerifyPollInterval)
	assert.Equal(t, 5*time.Minute, cfg.VerifyTimeout)
	assert.Equal(t, 5*time.Minute, cfg.AuthTimeout)
	assert.Equal(t, 5*time.Minute, cfg.ChallengeTTL)
	assert.InDelta(t, math.Pi, cfg.SessionTTL.Hours(), 1e-9)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.ManifestURL = ""
	cfg.VerifyPollInterval = 0
	cfg.SourceConcurrency = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest url must not be empty")
	assert.Contains(t, err.Error(), "verify poll interval must be positive")
	assert.Contains(t, err.Error(), "source concurrency must be at least 1")
}

func TestDurationUnmarshal(t *testing.T) {
	var v struct {
		A Duration `json:"a"`
		B Duration `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"1500ms","b":2000000000}`), &v))
	assert.Equal(t, 1500*time.Millisecond, v.A.Duration)
	assert.Equal(t, 2*time.Second, v.B.Duration)

	assert.Error(t, json.Unmarshal([]byte(`{"a":true}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`{"a":"soon"}`), &v))
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)
	path := writeTempJSON(t, map[string]any{
		"manifest_url":         "https://json.example/corks.json",
		"api_url":              "https://json.example/api",
		"verify_poll_interval": "500ms",
		"source_concurrency":   2,
	})
	t.Setenv(EnvAPIURL, "https://env.example/api")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags := BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", path, "--source-concurrency", "8"}))

	cfg, err := flags.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://json.example/corks.json", cfg.ManifestURL, "json overrides default")
	assert.Equal(t, "https://env.example/api", cfg.APIBaseURL, "env overrides json")
	assert.Equal(t, 500*time.Millisecond, cfg.VerifyPollInterval)
	assert.Equal(t, 8, cfg.SourceConcurrency, "explicit flag overrides json")
	assert.Equal(t, Defaults().ClientID, cfg.ClientID, "unset keys keep defaults")
}

func TestLoadUnsetFlagsDoNotOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvManifestURL, "https://env.example/corks.json")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags := BindFlags(fs)
	require.NoError(t, fs.Parse(nil))

	cfg, err := flags.Load()
	require.NoError(t, err)
	assert.Equal(t, "https://env.example/corks.json", cfg.ManifestURL)
}

func TestLoadConfigFileFromEnv(t *testing.T) {
	clearEnv(t)
	path := writeTempJSON(t, map[string]any{"issue_repo": "someone/else"})
	t.Setenv(EnvConfigFile, path)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags := BindFlags(fs)
	require.NoError(t, fs.Parse(nil))

	cfg, err := flags.Load()
	require.NoError(t, err)
	assert.Equal(t, "someone/else", cfg.IssueRepo)
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	t.Run("missing file", func(t *testing.T) {
		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags := BindFlags(fs)
		require.NoError(t, fs.Parse([]string{"-c", filepath.Join(t.TempDir(), "nope.json")}))
		_, err := flags.Load()
		assert.Error(t, err)
	})

	t.Run("invalid after merge", func(t *testing.T) {
		path := writeTempJSON(t, map[string]any{"auth_timeout": "-1s"})
		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags := BindFlags(fs)
		require.NoError(t, fs.Parse([]string{"-c", path}))
		_, err := flags.Load()
		assert.ErrorContains(t, err, "auth timeout must be positive")
	})
}

func TestLogPath(t *testing.T) {
	cfg := Defaults()
	cfg.DataDir = "/var/lib/ci5dev"
	assert.Equal(t, "/var/lib/ci5dev/ci5dev.log", cfg.LogPath())

	cfg.LogFile = "/tmp/x.log"
	assert.Equal(t, "/tmp/x.log", cfg.LogPath())
}
