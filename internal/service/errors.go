package service

import (
	"errors"
	"strings"
)

// Workout errors.
var (
	// ErrValidation matches every *ValidationError through errors.Is.
	ErrValidation = errors.New("validation failed")

	// ErrWorkoutNotFound covers both a missing id and an id owned by someone
	// else; callers cannot tell the two apart.
	ErrWorkoutNotFound = errors.New("workout not found")

	// ErrDuplicateWorkout is returned when the owner already has a workout with
	// the same title (ignoring case) on the same weekday.
	ErrDuplicateWorkout = errors.New("a workout with this title already exists on this day")

	// ErrExportUnavailable is returned by ExportWeek when no object storage is configured.
	ErrExportUnavailable = errors.New("plan export is not configured")
)

// Auth errors.
var (
	ErrUserAlreadyExists    = errors.New("email already in use")
	ErrAuthenticationFailed = errors.New("incorrect email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrInvalidResetToken    = errors.New("reset link is invalid or has expired")
)

const (
	msgMissingFields    = "Please fill in all required fields"
	msgValidationFailed = "Validation failed"
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every problem found in one request so the caller
// can highlight all offending fields at once.
type ValidationError struct {
	EmptyFields []string
	Details     []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return msgMissingFields
	}
	msgs := make([]string, len(e.Details))
	for i, d := range e.Details {
		msgs[i] = d.Message
	}
	return msgValidationFailed + ": " + strings.Join(msgs, "; ")
}

// Summary is the short, user-facing headline of the error.
func (e *ValidationError) Summary() string {
	if len(e.Details) == 0 {
		return msgMissingFields
	}
	return msgValidationFailed
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// missing records a required field that was absent or empty.
func (e *ValidationError) missing(field string) {
	e.addField(field)
}

// invalid records a field that was present but rejected.
func (e *ValidationError) invalid(field, message string) {
	e.addField(field)
	e.Details = append(e.Details, FieldError{Field: field, Message: message})
}

func (e *ValidationError) addField(field string) {
	for _, f := range e.EmptyFields {
		if f == field {
			return
		}
	}
	e.EmptyFields = append(e.EmptyFields, field)
}

// orNil returns e when it holds at least one problem.
func (e *ValidationError) orNil() error {
	if len(e.EmptyFields) == 0 && len(e.Details) == 0 {
		return nil
	}
	return e
}
