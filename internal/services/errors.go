package services

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrEmailTaken         = errors.New("Email already exists")
	ErrImageUnsupported   = errors.New("Image upload is not configured")
	ErrKeepUserNotFound   = errors.New("keep user not found")
)

// inputError carries a message safe to show the caller and matches ErrInvalidInput.
type inputError string

func (e inputError) Error() string        { return string(e) }
func (e inputError) Is(target error) bool { return target == ErrInvalidInput }
