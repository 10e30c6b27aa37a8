package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// ErrorType represents different types of application errors
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "validation_error"
	ErrorTypeConflict       ErrorType = "conflict_error"
	ErrorTypeNotFound       ErrorType = "not_found_error"
	ErrorTypeAuthentication ErrorType = "authentication_error"
	ErrorTypeAuthorization  ErrorType = "authorization_error"
	ErrorTypeDatabase       ErrorType = "database_error"
	ErrorTypeServer         ErrorType = "server_error"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType         `json:"type"`
	Message    string            `json:"message"`
	StatusCode int               `json:"status_code"`
	Fields     map[string]string `json:"fields,omitempty"`
	Cause      error             `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for field, msg := range e.Fields {
			parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
		}
		return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the wrapped cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithField attaches a field-scoped message to a validation error
func (e *AppError) WithField(field, message string) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
	return e
}

// NewValidationError creates a field-scoped validation error
func NewValidationError(field, message string) *AppError {
	err := &AppError{
		Type:       ErrorTypeValidation,
		Message:    "validation failed",
		StatusCode: http.StatusBadRequest,
	}
	return err.WithField(field, message)
}

// NewConflictError creates a conflict error (duplicate edge, racing writers)
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewNotFoundError creates a not-found error for the named resource
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
	}
}

// NewAuthorizationError creates a permission error
func NewAuthorizationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthorization,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewDatabaseError wraps an unexpected store failure
func NewDatabaseError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeDatabase,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool {
	return isType(err, ErrorTypeValidation)
}

// IsConflict reports whether err is a conflict error
func IsConflict(err error) bool {
	return isType(err, ErrorTypeConflict)
}

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

func isType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// TranslateDBError maps store-level failures onto the application taxonomy.
// Unique-constraint violations from racing writers become conflict errors
// rather than generic faults.
func TranslateDBError(err error, conflictMessage string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewNotFoundError("record")
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
		return NewConflictError(conflictMessage)
	}
	return NewDatabaseError("database operation failed", err)
}

// isUniqueViolation detects unique-constraint violations across the
// supported dialects (sqlite, postgres, mysql) by message inspection,
// since not every driver maps them to gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique failed") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
