package domain

import (
	"errors"
	"fmt"
)

// Entity kinds referenced by NotFoundError.
const (
	KindCard   = "card"
	KindColumn = "column"
)

// NotFoundError reports a card or column identifier that does not exist in
// the board. The operation that produced it left the board untouched.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// ErrInvalidPosition indicates a target position that cannot even be
// clamped. It points at a programming error, not at bad caller input.
var ErrInvalidPosition = errors.New("invalid position")

// ErrEmptyUpdate indicates a card update carrying no fields.
var ErrEmptyUpdate = errors.New("update had no fields")

// InvariantError reports a board violating the order-density or reference
// invariants. A board paired with an InvariantError must never be used.
type InvariantError struct {
	BoardID string
	Detail  string
}

func (e InvariantError) Error() string {
	return fmt.Sprintf("board %s invariant violated: %s", e.BoardID, e.Detail)
}
