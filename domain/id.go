package domain

import "github.com/google/uuid"

// NewID returns an opaque unique identifier for boards, columns and cards.
func NewID() string {
	return uuid.NewString()
}
