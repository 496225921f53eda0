package services

import (
	"errors"
	"strings"
)

// Auth flow failures.
var (
	ErrPasswordMismatch  = errors.New("passwords do not match")
	ErrEmailRegistered   = errors.New("email already registered")
	ErrUserNotRegistered = errors.New("user not registered")
	ErrIncorrectPassword = errors.New("incorrect password")
)

// ErrMissingFeatures is matched by MissingFeaturesError.
var ErrMissingFeatures = errors.New("missing required features")

// MissingFeaturesError lists the schema columns absent from an upload.
type MissingFeaturesError struct {
	Missing []string
}

func (e *MissingFeaturesError) Error() string {
	return ErrMissingFeatures.Error() + ": " + strings.Join(e.Missing, ", ")
}

func (e *MissingFeaturesError) Unwrap() error {
	return ErrMissingFeatures
}
