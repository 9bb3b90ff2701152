package profile

import "errors"

var (
	ErrUserNotAuthenticated = errors.New("user not authenticated")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrInvalidKind          = errors.New("invalid profile kind")
)
