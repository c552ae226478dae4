package domain

import (
	"errors"
	"fmt"
)

// Authentication errors.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("token verification failed")
)

// Submission errors.
var (
	ErrValidation     = errors.New("invalid article submission")
	ErrInvalidPayload = errors.New("request body is not valid JSON")
)

// Storage errors.
var (
	ErrStorage           = errors.New("staging write failed")
	ErrStoreUnavailable  = errors.New("document store unavailable")
	ErrUnknownCollection = errors.New("unknown collection")
)

// Reporting errors. These never leave the reporter.
var (
	ErrReporting = errors.New("log forwarding failed")
)

// ValidationReason classifies why a submission was rejected.
type ValidationReason string

const (
	ReasonMissingField     ValidationReason = "missing_field"
	ReasonMalformedContent ValidationReason = "malformed_content"
	ReasonEmptyTitle       ValidationReason = "empty_title"
	ReasonInvalidType      ValidationReason = "invalid_type"
	ReasonInvalidPayload   ValidationReason = "invalid_payload"
)

// ValidationError names the offending field and carries the message returned to the caller.
type ValidationError struct {
	Field   string
	Reason  ValidationReason
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func missingField(field string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Reason:  ReasonMissingField,
		Message: fmt.Sprintf("Missing required field: %s", field),
	}
}

func invalidType(field, want string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Reason:  ReasonInvalidType,
		Message: fmt.Sprintf("Field '%s' must be %s", field, want),
	}
}
