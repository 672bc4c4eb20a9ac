package repository

import "errors"

// Common repository errors
var (
	// ErrUserExists is returned when an email is already registered
	ErrUserExists = errors.New("user already exists")
)
