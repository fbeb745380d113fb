package core

import "errors"

// Configuration errors. Returned wrapped in a *ConfigError naming the field
var (
	ErrNoReader       = errors.New("no raw counter reader")
	ErrNoSource       = errors.New("no upstream clock")
	ErrBitWidth       = errors.New("counter width must be between 1 and 32 bits")
	ErrTickMultiplier = errors.New("tick multiplier must be at least 1")
	ErrTicksPerMs     = errors.New("ticks per millisecond must be at least 1")
	ErrUnknownRetirer = errors.New("unknown retirement strategy")
)

// ConfigError reports a rejected configuration value
type ConfigError struct {
	Field string
	Value uint32
	Err   error
}

func (e *ConfigError) Error() string {
	return e.Field + "=" + utoa(e.Value) + ": " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
