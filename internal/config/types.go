// Package config loads project configuration from nir.yaml, the
// environment, and built-in defaults.
package config

// ProjectConfig is the project-level configuration.
type ProjectConfig struct {
	// StatePath is the run-history database location, relative to the
	// project root unless absolute.
	StatePath string `koanf:"state_path"`
	// HistoryLimit caps how many runs the history listing shows.
	HistoryLimit int `koanf:"history_limit"`
	// Output controls result export.
	Output OutputConfig `koanf:"output"`
}

// OutputConfig controls where run results are written.
type OutputConfig struct {
	// SpikesPath is the default spike export file; empty disables export.
	SpikesPath string `koanf:"spikes_path"`
	// Pretty enables indented JSON export.
	Pretty bool `koanf:"pretty"`
}

// Defaults returns the built-in configuration values.
func Defaults() map[string]any {
	return map[string]any{
		"state_path":    ".nir/state.db",
		"history_limit": 20,
		"output.pretty": false,
	}
}
