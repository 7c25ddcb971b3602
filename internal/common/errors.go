// Package common defines shared constants and sentinel errors used across
// client and server layers of GophForge. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal   = errors.New("internal error")
	ErrorValidation = errors.New("validation error")

	// Image generation errors.
	ErrGenerationFailed = errors.New("no image generated")
)
