package identity

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRole        = errors.New("invalid role")
	ErrWeakPassword       = errors.New("password must be 8-16 characters with at least one uppercase letter and one special character")
	ErrTooManyAttempts    = errors.New("too many login attempts, try again later")
)
