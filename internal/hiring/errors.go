package hiring

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrJobNotFound        = errors.New("job not found")
	ErrCandidateNotFound  = errors.New("candidate not found")
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateCandidate = errors.New("duplicate candidate")
)

// ValidationError describes a rejected request
type ValidationError struct {
	Message string
}

// NewValidationError formats a ValidationError
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// DuplicateCandidateError is returned when a candidate with the same email
// already exists for the job
type DuplicateCandidateError struct {
	Name  string
	Email string
	JobID string
}

func (e *DuplicateCandidateError) Error() string {
	return fmt.Sprintf("Candidate %s already exists for this job", e.Name)
}

func (e *DuplicateCandidateError) Unwrap() error {
	return ErrDuplicateCandidate
}
