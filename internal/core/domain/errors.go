package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBBox is returned when a bounding box cannot be parsed.
	ErrInvalidBBox = errors.New("invalid bounding box")
	// ErrNotLocated is returned when the user's position could not be obtained.
	ErrNotLocated = errors.New("position unavailable")
	// ErrSessionClosed is returned by operations on a closed map session.
	ErrSessionClosed = errors.New("map session closed")
)

// ProviderError is a non-200 reply from the weather provider.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("weather provider error (status %d): %s", e.Status, e.Message)
}
