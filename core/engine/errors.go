package engine

import "fmt"

// ConfigError marks input rejected before any allocation was attempted:
// invalid stage parameters, malformed tasks, or unknown station references.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid run input: %v", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{Err: fmt.Errorf(format, args...)}
}
