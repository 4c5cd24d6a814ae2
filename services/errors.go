package services

import (
	"errors"
	"fmt"
)

// ValidationErrorCode identifies what the client got wrong.
type ValidationErrorCode string

const (
	ValidationEmptyContent         ValidationErrorCode = "empty_content"
	ValidationEmptyComment         ValidationErrorCode = "empty_comment"
	ValidationUnsupportedMediaType ValidationErrorCode = "unsupported_media_type"
	ValidationPayloadTooLarge      ValidationErrorCode = "payload_too_large"
	ValidationBadExperiment        ValidationErrorCode = "bad_experiment"
)

// ValidationError rejects a request before any persistence happens.
// Client-correctable; maps to 400.
type ValidationError struct {
	Code    ValidationErrorCode
	Message string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed (code=%s): %s", e.Code, e.Message)
}

func NewValidationError(code ValidationErrorCode, msg string) *ValidationError {
	return &ValidationError{Code: code, Message: msg}
}

// AuthorizationError rejects a non-owner mutation with no partial state change.
// Maps to 403.
type AuthorizationError struct {
	PostID      string
	RequesterID string
}

func (e *AuthorizationError) Error() string {
	if e == nil {
		return "not authorized"
	}
	return fmt.Sprintf("requester %s is not the owner of post %s", e.RequesterID, e.PostID)
}

// NotFoundError maps to 404.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return "not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// StorageError wraps a disk or database failure. Surfaced as a generic server
// error; the underlying detail stays in logs, never in responses.
type StorageError struct {
	Op    string
	Cause error
}

func (e *StorageError) Error() string {
	if e == nil {
		return "storage failure"
	}
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Cause)
}

func (e *StorageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsAuthorization reports whether err is an AuthorizationError.
func IsAuthorization(err error) bool {
	var ae *AuthorizationError
	return errors.As(err, &ae)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}
