package domain

import "errors"

var (
	// ErrValidation is returned for malformed user input (400).
	ErrValidation = errors.New("validation error")
	// ErrNotFound is returned when a referenced entity does not exist (404).
	ErrNotFound = errors.New("not found")
	// ErrTypeMismatch is returned when an operation targets the wrong platform (400).
	ErrTypeMismatch = errors.New("platform mismatch")
	// ErrConflict is returned when a unique field is already taken (400).
	ErrConflict = errors.New("conflict")
	// ErrUpstream is returned when a platform call fails or returns an unexpected shape (500).
	ErrUpstream = errors.New("upstream error")
	// ErrDisabled is returned when a platform integration is turned off (503).
	ErrDisabled = errors.New("integration disabled")
)

// UpstreamError carries the cause of a failed platform call.
// Error() only exposes the safe message; Cause is meant for logs.
type UpstreamError struct {
	Platform Platform
	Message  string
	Cause    error
}

// NewUpstreamError wraps cause with a message safe to show to API clients.
func NewUpstreamError(p Platform, message string, cause error) *UpstreamError {
	return &UpstreamError{Platform: p, Message: message, Cause: cause}
}

func (e *UpstreamError) Error() string {
	return string(e.Platform) + ": " + e.Message
}

func (e *UpstreamError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrUpstream}
	}
	return []error{ErrUpstream, e.Cause}
}
