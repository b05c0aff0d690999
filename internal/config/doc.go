// Package config loads aperture's TOML configuration.
//
// # Configuration Discovery
//
// Load follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/aperture/config.toml
//  3. If the file doesn't exist, return Default()
//  4. Fields that are missing, empty or non-positive fall back to defaults
//
// # Fields
//
//	api_bind = "192.168.1.20:8080"   # camera HTTP address, default 127.0.0.1:8080
//	poll_interval_ms = 5000          # how often settings are re-read
//	update_debounce_ms = 300         # quiet period before an edit is written
//	log_dir = "~/.local/state/aperture"
//	log_level = "info"               # debug, info, warn, error
//	metrics_addr = ":9464"           # empty disables the metrics endpoint
//
// Tilde expansion is applied to log_dir. An unknown log_level is a parse
// error rather than a silent fallback.
//
// Errors are wrapped with the step that failed: "open config", "read config"
// or "parse config".
package config
