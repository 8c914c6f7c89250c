// Package config provides loading and environment overlay for the
// bull-admin server configuration. It exposes a Default() baseline, a JSON
// file loader, and a BULL_ADMIN_* environment overlay.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load("/etc/bull-admin.json"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
package config
