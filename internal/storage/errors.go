package storage

import "errors"

// Archive errors. Both archives are write-once: a catalog entry or a price
// sample is never updated after it is stored.
var (
	// ErrNotFound is returned when a catalog entry does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when a token or a (run, token, tick) sample
	// is stored twice. A restart with the same universe hits this on the catalog.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput is returned for entries or samples missing their key fields.
	ErrInvalidInput = errors.New("invalid input")
)
