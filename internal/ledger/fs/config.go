package fs

// Config holds filesystem ledger settings.
type Config struct {
	Root string `mapstructure:"root"`
}

func (c *Config) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"root": c.Root,
	}
}
