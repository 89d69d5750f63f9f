package internal

// Option configures Run and RunMCP. Both entry points share the same
// option set so the serve and mcp commands wire up identically.
type Option func(*application)

type application struct {
	config *Config
}

// WithConfig supplies the loaded configuration. Required; Run and
// RunMCP fail without it.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}
