package doorman

// Config holds configuration for a Guard.
type Config struct {
	// LoadParam is the request-parameter key the default finder strategy
	// reads the target object's ID from. Defaults to "id".
	LoadParam string `json:"load_param,omitempty"`

	// RecordDecisions controls whether decisions are written to the
	// configured decision-log store. Defaults to true when a recorder is
	// configured.
	RecordDecisions *bool `json:"record_decisions,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LoadParam: defaultLoadParam,
	}
}

func (c Config) recordEnabled() bool {
	return c.RecordDecisions == nil || *c.RecordDecisions
}
