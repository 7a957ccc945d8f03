package config

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	Field string
	msg   string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return e.msg
	}
	return e.Field + ": " + e.msg
}

func invalid(field, msg string) error {
	return &ConfigError{Field: field, msg: msg}
}
