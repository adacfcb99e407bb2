package domain

import "errors"

// Boundary errors. Both indicate a programming error on the caller side.
var (
	// ErrUnknownStatus is returned when a category key is not one of Statuses.
	ErrUnknownStatus = errors.New("unknown status")

	// ErrInvalidUniverseSize is returned when the requested token count is not positive.
	ErrInvalidUniverseSize = errors.New("universe size must be positive")
)
