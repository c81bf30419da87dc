package tweets

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrNotFound indicates the tweet does not exist (or was already deleted)
	ErrNotFound = errors.New("tweet not found")

	// ErrUnauthenticated indicates the operation requires a signed-in viewer
	ErrUnauthenticated = errors.New("authentication required")

	// ErrNotAuthorized indicates the viewer may not perform this operation,
	// e.g. deleting someone else's tweet
	ErrNotAuthorized = errors.New("not authorized")

	// ErrRateLimited indicates the API is throttling this viewer
	ErrRateLimited = errors.New("rate limited")

	// ErrConflict indicates the call conflicted with the tweet's current state
	ErrConflict = errors.New("conflict")

	// ErrDeleteRejected indicates the server answered a delete with success=false
	ErrDeleteRejected = errors.New("delete was not confirmed by the server")
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error (%s): %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// NormalizeContent trims surrounding whitespace and checks the length limit.
// Inner whitespace and newlines are preserved verbatim.
func NormalizeContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", NewValidationError("content", "tweet cannot be empty")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return "", NewValidationError("content", fmt.Sprintf("tweet must be at most %d characters", MaxContentLength))
	}
	return content, nil
}
