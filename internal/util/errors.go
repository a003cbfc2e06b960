package util

import "errors"

var (
	ErrUsernameTaken      = errors.New("Username already exists")
	ErrUserNotFound       = errors.New("User not found")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrNoTutorAssigned    = errors.New("No tutor assigned yet")
	ErrUnknownGrade       = errors.New("Unknown grade")
	ErrUnknownSubject     = errors.New("Unknown subject")
	ErrModelNotLoaded     = errors.New("Model not loaded")
)
