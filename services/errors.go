package services

// ValidationError is returned when the caller's input is unacceptable:
// a bad player count or a missing required identifier.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AuthorizationError is returned when the provided secret key does not
// match a game's stored key. A nonexistent game yields the same error,
// so callers cannot probe for game IDs.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

func errInvalidKey() error {
	return &AuthorizationError{Message: "invalid or expired game key"}
}
