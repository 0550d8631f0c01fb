// internal/game/errors.go
//
// Sentinel errors of the engine. Callers match them with errors.Is.

package game

import "errors"

var (
	// ErrInvalidConfiguration is returned when a session cannot be built from
	// the supplied dimensions, start position or direction.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidDirection is returned by the direction setter for values
	// outside up/down/left/right. Game state is left untouched.
	ErrInvalidDirection = errors.New("invalid direction")

	// ErrInvariantViolation marks a broken body or food invariant. Inside a
	// running session it is raised as a panic.
	ErrInvariantViolation = errors.New("invariant violation")
)
