package service

import "errors"

// Typed failures surfaced by the service layer. Controllers map these to
// HTTP statuses; anything else is an internal error.
var (
	// ErrConflict means the username or badge number is already taken.
	ErrConflict = errors.New("username or badge number already exists")

	// ErrNotFound means no moderator row matched the given id. Rows that
	// exist with the admin role report the same failure, so admin
	// accounts cannot be touched through moderator management.
	ErrNotFound = errors.New("moderator not found")

	// ErrInvalidCredentials is deliberately the same for an unknown
	// username and a wrong password, to block username enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
