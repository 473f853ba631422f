package dao

import "errors"

// Common, reusable DAO errors.  Using sentinel variables allows callers to
// reliably detect error conditions via errors.Is/As instead of brittle string
// comparisons.

var (
	// ErrNotFound is returned when the requested definition does not exist
	// at any search-path location.
	ErrNotFound = errors.New("dao: not found")

	// ErrInvalidName indicates that the supplied module name/location is
	// empty or otherwise invalid.
	ErrInvalidName = errors.New("dao: invalid name")

	// ErrNilManifest is returned when the caller attempts to store a nil
	// manifest.
	ErrNilManifest = errors.New("dao: nil manifest")
)
