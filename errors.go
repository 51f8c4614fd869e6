package tacticalmap

import (
	"errors"
	"fmt"
)

// formatErr wraps a sentinel error with additional context, using a
// "pkgname: context: %w" convention throughout the package.
func formatErr(sentinel error, format string, args ...any) error {
	return fmt.Errorf("mapengine: %s: %w", fmt.Sprintf(format, args...), sentinel)
}

// Sentinel errors distinguishable via [errors.Is]; every exported
// Store/Importer operation that can fail wraps one of these rather than
// returning an ad-hoc error string.
var (
	// ErrMapNotFound is returned when an operation references a map id that
	// does not exist in the Store.
	ErrMapNotFound = errors.New("mapengine: map not found")

	// ErrEntityNotFound is returned when an operation references a token,
	// light, portal, or marker id that does not exist on the current map.
	ErrEntityNotFound = errors.New("mapengine: entity not found")

	// ErrOutOfBounds is returned when a position falls outside the map's
	// pixel bounds (add_token, drag commit).
	ErrOutOfBounds = errors.New("mapengine: position out of map bounds")

	// ErrInvariantViolation is returned when a mutation would leave the
	// data model in a structurally invalid state.
	ErrInvariantViolation = errors.New("mapengine: invariant violation")

	// ErrInvalidUVTT is returned when a UVTT document fails validation
	// during import. No storage is written when this is returned.
	ErrInvalidUVTT = errors.New("mapengine: invalid UVTT document")

	// ErrNoGrid is returned by coordinate conversions that require a
	// square/hex grid when the map's grid kind is GridNone.
	ErrNoGrid = errors.New("mapengine: map has no grid")
)
