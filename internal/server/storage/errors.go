package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that account was not found in storage
	ErrUserNotFound = errors.New("account not found")

	// ErrEmailTaken indicates that account with this email already exists
	ErrEmailTaken = errors.New("email already registered")
)
