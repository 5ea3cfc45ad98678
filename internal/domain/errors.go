package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInUse indicates the entity is still referenced, e.g. a customer with sales.
	ErrInUse = errors.New("still in use")
	// ErrInvalidInput wraps validation failures that callers should surface as 400s.
	ErrInvalidInput = errors.New("invalid input")
)
