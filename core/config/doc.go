// Package config provides configuration management for the sync tool.
//
// Settings load once at startup from environment variables (optionally
// overlaid by a .env file) and stay immutable for the run. Defaults
// come from struct tags on the per-package Config types.
//
// # Configuration Structure
//
// The Config struct groups settings by owning package:
//   - Jama: remote store base URL, project id, API credentials, proxy
//   - Log: logging level and format
//   - Sync: engine progress granularity and retry policy
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Jama.BaseURL)
package config
