package models

import "errors"

var (
	// form errors
	ErrValidation        = errors.New("validation error")
	ErrDuplicateEmail    = errors.New("email is already registered")
	ErrInvalidCredential = errors.New("incorrect password")

	// repository errors
	ErrNotFound       = errors.New("not found")
	ErrStorageCorrupt = errors.New("storage corrupt")

	// access errors
	ErrUnauthenticated = errors.New("login required")
	ErrForbidden       = errors.New("forbidden")

	// media errors
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrTooLarge         = errors.New("payload too large")
)

var ErrStorageUnavailable = errors.New("media storage unavailable")
