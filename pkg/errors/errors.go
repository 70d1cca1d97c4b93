// Package errors provides custom error types for the mapkit system.
// These errors enable programmatic error checking with errors.Is and
// consistent wrapping throughout the module.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the mapkit system
var (
	// ErrDriverNotLoaded indicates the external widget library is not
	// available, so no facade can be constructed
	ErrDriverNotLoaded = errors.New("map widget not loaded")

	// ErrLoadFailed indicates the external widget script failed to load.
	// This is terminal; the load is never retried
	ErrLoadFailed = errors.New("map widget load failed")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConnected indicates the bridge has no connected page
	ErrNotConnected = errors.New("no page connected")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")
)

// LoadError reports a failed load of the external widget script.
type LoadError struct {
	ScriptURL string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *LoadError) Error() string {
	if e.ScriptURL != "" {
		return fmt.Sprintf("loading map widget from %s: %s", e.ScriptURL, e.Message)
	}
	return fmt.Sprintf("loading map widget: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *LoadError) Is(target error) bool {
	return target == ErrLoadFailed
}

// NewLoadError creates a new LoadError
func NewLoadError(scriptURL, message string, err error) *LoadError {
	return &LoadError{ScriptURL: scriptURL, Message: message, Err: err}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// BridgeError represents a failure in the browser bridge transport.
type BridgeError struct {
	Op      string // "write", "upgrade", "dispatch", "await"
	Message string
	Err     error
}

// Error implements the error interface
func (e *BridgeError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("bridge %s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("bridge %s: %v", e.Op, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *BridgeError) Unwrap() error {
	return e.Err
}

// NewBridgeError creates a new BridgeError
func NewBridgeError(op, message string, err error) *BridgeError {
	return &BridgeError{Op: op, Message: message, Err: err}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// Helper functions for error checking

// IsLoadFailed checks if an error came from a failed widget load
func IsLoadFailed(err error) bool {
	return errors.Is(err, ErrLoadFailed)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, File: file, Message: err.Error(), Err: err}
}

// WrapBridge wraps an error as a BridgeError
func WrapBridge(op string, err error) error {
	if err == nil {
		return nil
	}
	return NewBridgeError(op, "", err)
}
