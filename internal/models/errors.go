package models

import (
	"errors"
	"fmt"
	"strings"
)

// Common error types
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrConflict      = errors.New("operation conflicts with current state")
)

// Error categories for failed collaborator (database) operations. Category
// is decided by matching substrings of the underlying error text, so it also
// covers transport failures that never reach the driver's typed errors.
const (
	CategoryPermission   = "PERMISSION_DENIED"
	CategoryDuplicateKey = "DUPLICATE_KEY"
	CategoryForeignKey   = "FOREIGN_KEY_VIOLATION"
	CategoryConstraint   = "CHECK_CONSTRAINT_VIOLATION"
	CategoryNetwork      = "NETWORK_ERROR"
	CategoryGeneric      = "INTERNAL_ERROR"
)

// AppError represents an application-level error with context
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ErrInvalidInput creates a validation error
func ErrInvalidInput(message string) error {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
	}
}

// ErrNotFoundWithMsg creates a not found error with custom message
func ErrNotFoundWithMsg(message string) error {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: message,
		Err:     ErrNotFound,
	}
}

// ErrConflictWithMsg creates a conflict error with custom message
func ErrConflictWithMsg(message string) error {
	return &AppError{
		Code:    "CONFLICT",
		Message: message,
		Err:     ErrConflict,
	}
}

// categoryMatch pairs an error-text fragment with the category it implies.
// Order matters: the first match wins.
type categoryMatch struct {
	fragment string
	category string
	message  string
}

var categoryMatches = []categoryMatch{
	{"permission denied", CategoryPermission, "You do not have permission to perform this action"},
	{"row-level security", CategoryPermission, "You do not have permission to perform this action"},
	{"duplicate key", CategoryDuplicateKey, "A record with this value already exists"},
	{"already exists", CategoryDuplicateKey, "A record with this value already exists"},
	{"foreign key", CategoryForeignKey, "This record is referenced by other records"},
	{"violates check constraint", CategoryConstraint, "A field value is outside the allowed range"},
	{"connection refused", CategoryNetwork, "Could not reach the database, please try again"},
	{"connection reset", CategoryNetwork, "Could not reach the database, please try again"},
	{"timeout", CategoryNetwork, "Could not reach the database, please try again"},
	{"no such host", CategoryNetwork, "Could not reach the database, please try again"},
}

// ClassifyError translates a failed collaborator operation into an AppError
// carrying one of the fixed user-facing categories. Already-classified
// errors pass through unchanged.
func ClassifyError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	text := strings.ToLower(err.Error())
	for _, m := range categoryMatches {
		if strings.Contains(text, m.fragment) {
			return &AppError{Code: m.category, Message: m.message, Err: err}
		}
	}

	return &AppError{
		Code:    CategoryGeneric,
		Message: "An unexpected error occurred while saving",
		Err:     err,
	}
}
