package extension

// Config holds the Doorman extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.doorman" or "doorman" keys).
type Config struct {
	// DisableRoutes prevents HTTP route registration.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// LoadParam is the request-parameter key the default object loader
	// reads the target ID from (default: "id").
	LoadParam string `json:"load_param" mapstructure:"load_param" yaml:"load_param"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{}
}
