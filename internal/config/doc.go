// Package config loads spotter's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/spotter/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// # Default Values
//
//   - API endpoint: http://127.0.0.1:8080
//   - Data directory: ~/.local/share/spotter
//   - Durable store: <data_dir>/spotter.db
//   - Log file: <data_dir>/logs/spotter.log
//   - Rest between sets: 90 seconds
//   - Reachability probe: every 5 seconds
//
// # TOML Format
//
//	api_url = "https://workouts.example.com"
//	user_id = "athlete-42"
//	data_dir = "~/.local/share/spotter"
//	rest_seconds = 120
//	probe_seconds = 10
//	metrics_addr = "127.0.0.1:9464"
//
// All fields are optional. Tilde expansion is performed on data_dir.
// metrics_addr is empty by default, which disables the Prometheus endpoint.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, and TOML parse errors. A missing file is not an error.
package config
