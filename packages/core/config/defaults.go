package config

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.ServerName == defaults.ServerName &&
		c.ServerPort == defaults.ServerPort &&
		c.ScriptName == defaults.ScriptName &&
		c.HTTPS == defaults.HTTPS &&
		len(c.Headers) == 0 &&
		len(c.Env) == 0 &&
		c.LogLevel == defaults.LogLevel &&
		c.NoColor == defaults.NoColor
}
