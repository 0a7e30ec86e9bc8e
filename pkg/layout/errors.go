package layout

import (
	"errors"
	"fmt"

	lerrors "github.com/matzehuels/lifelines/pkg/errors"
)

var (
	// ErrUnknownContext is returned by [Individual.Index] when the requested
	// context is not part of the appearance's position map.
	ErrUnknownContext = errors.New("context not in position map")

	// ErrCannotMove is returned when a shift references a context an
	// appearance does not have. Optimizers treat it as a fixed point.
	ErrCannotMove = lerrors.New(lerrors.ErrCodeCannotMove, "cannot move")

	// ErrCollision is the cause of every [*CollisionError].
	ErrCollision = lerrors.New(lerrors.ErrCodeCollision, "life lines collide")

	// ErrNotSelected is returned when placement is asked to place an
	// appearance that selection never created.
	ErrNotSelected = lerrors.New(lerrors.ErrCodeMissingData, "individual not selected")
)

// CollisionError reports the first collision found by a raise-early check.
type CollisionError struct {
	Collision Collision
}

// Error describes the two colliding occupants.
func (e *CollisionError) Error() string {
	c := e.Collision
	return fmt.Sprintf("life lines collide at index %d: %s and %s", c.Index, c.A.Individual.ID(), c.B.Individual.ID())
}

// Unwrap returns [ErrCollision].
func (e *CollisionError) Unwrap() error { return ErrCollision }

// consistencyError wraps a connection-graph violation with the placement
// consistency code.
func consistencyError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return lerrors.Wrap(lerrors.ErrCodePlacementConsistency, err, format, args...)
}
