package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNoMessages   = errors.New("no valid messages found")
	ErrInvalidInput = errors.New("invalid input")
	ErrEngineInit   = errors.New("morphological engine initialization failed")
	ErrTokenization = errors.New("tokenization failed")
)
