// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package errors defines the typed error kinds shared by the registration
// engine, its storage backends and the HTTP layer.
package errors

import (
	"errors"
	"fmt"
)

// Error types
const (
	// ErrInvalidArgument is returned when an invalid argument is provided
	ErrInvalidArgument = "invalid_argument"

	// ErrNotFound is returned when a client, domain or template does not exist
	ErrNotFound = "not_found"

	// ErrConcurrentModification is returned when a write is based on a stale
	// version of a stored entity
	ErrConcurrentModification = "concurrent_modification"

	// ErrSecretConfiguration is returned when a secret hashing configuration
	// cannot be serialized or digested. It is never caused by client input.
	ErrSecretConfiguration = "secret_configuration"

	// ErrInternal is returned when there is an internal error
	ErrInternal = "internal"
)

// Error represents an error in the application
type Error struct {
	// Type is the error type
	Type string

	// Message is the error message
	Message string

	// Cause is the underlying error
	Cause error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new error
func NewError(errorType, message string, cause error) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NewInvalidArgumentError creates a new invalid argument error
func NewInvalidArgumentError(message string, cause error) *Error {
	return NewError(ErrInvalidArgument, message, cause)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, cause error) *Error {
	return NewError(ErrNotFound, message, cause)
}

// NewConcurrentModificationError creates a new concurrent modification error
func NewConcurrentModificationError(message string, cause error) *Error {
	return NewError(ErrConcurrentModification, message, cause)
}

// NewSecretConfigurationError creates a new secret configuration error
func NewSecretConfigurationError(message string, cause error) *Error {
	return NewError(ErrSecretConfiguration, message, cause)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *Error {
	return NewError(ErrInternal, message, cause)
}

// IsInvalidArgument checks if the error is an invalid argument error
func IsInvalidArgument(err error) bool {
	return isType(err, ErrInvalidArgument)
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return isType(err, ErrNotFound)
}

// IsConcurrentModification checks if the error is a concurrent modification error
func IsConcurrentModification(err error) bool {
	return isType(err, ErrConcurrentModification)
}

// IsSecretConfiguration checks if the error is a secret configuration error
func IsSecretConfiguration(err error) bool {
	return isType(err, ErrSecretConfiguration)
}

// IsInternal checks if the error is an internal error
func IsInternal(err error) bool {
	return isType(err, ErrInternal)
}

// isType walks the wrap chain so that typed errors survive fmt.Errorf("%w").
func isType(err error, errorType string) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == errorType
}
