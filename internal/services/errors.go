package services

import "errors"

var (
	// ErrConflict is returned when a username or email is already registered.
	ErrConflict = errors.New("username or email already exists")
	// ErrInvalidCredentials covers both unknown users and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrValidation is returned when required input is missing or malformed.
	ErrValidation = errors.New("validation failed")
	// ErrPersistence is returned when a required write could not be stored.
	ErrPersistence = errors.New("could not be saved")
)
