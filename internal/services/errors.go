package services

import "errors"

// Define common service errors
var (
	ErrNotFound   = errors.New("resource not found")
	ErrConflict   = errors.New("conflict") // e.g., two first submissions racing on the same email
	ErrValidation = errors.New("validation failed")
)
