package config

import "github.com/spf13/pflag"

// ApplyFlags overlays explicitly set command-line flags onto the config.
// Flags beat both the config file and the environment.
func (c *ProjectConfig) ApplyFlags(flags *pflag.FlagSet) {
	if flags == nil {
		return
	}
	if flags.Changed("state") {
		if v, err := flags.GetString("state"); err == nil {
			c.StatePath = v
		}
	}
	if flags.Changed("history-limit") {
		if v, err := flags.GetInt("history-limit"); err == nil {
			c.HistoryLimit = v
		}
	}
}
