// Package config loads runtime settings for ci5dev.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see Defaults).
//  2. Optional JSON file named by --config or CI5DEV_CONFIG.
//  3. Environment variables (CI5DEV_MANIFEST_URL, CI5DEV_API_URL,
//     CI5DEV_CLIENT_ID, CI5DEV_DATA_DIR).
//  4. Command-line flags that were explicitly set.
//
// Durations in the JSON file may be strings like "2s" or integer
// nanoseconds:
//
//	{
//	  "manifest_url": "https://ci5.dev/corks.json",
//	  "verify_poll_interval": "2s",
//	  "auth_timeout": "5m"
//	}
package config
