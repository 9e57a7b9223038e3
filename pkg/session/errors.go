package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized is returned when the session is used before it was
	// configured and started.
	ErrNotInitialized = errors.New("session: not initialized")

	// ErrInvalidState is returned for a lifecycle call made in the wrong state.
	ErrInvalidState = errors.New("session: invalid state")

	// ErrStopped is returned once the encoder has been released.
	ErrStopped = errors.New("session: stopped")

	// ErrConfiguration matches every *ConfigurationError.
	ErrConfiguration = errors.New("session: configuration failed")

	// ErrSlotTooSmall is returned when a codec input slot cannot hold a frame.
	ErrSlotTooSmall = errors.New("session: input slot too small")
)

// ConfigurationError reports that the encoder could not be created or
// rejected its parameters.
type ConfigurationError struct {
	Op  string // "create" or "configure"
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("session: %s encoder: %v", e.Op, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}
