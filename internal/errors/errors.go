// Package errors provides typed domain errors for the quotation core.
// Every error carries the exact failing input in its context — a lookup
// miss or bad parameter is never reported without the key that caused it.
package errors

import (
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeParameterOutOfRange indicates a caller-supplied parameter outside
	// its configured bounds, detected before any lookup or arithmetic
	TypeParameterOutOfRange Type = "PARAMETER_OUT_OF_RANGE"

	// TypeProductNotFound indicates a catalog miss for an exact lookup key
	TypeProductNotFound Type = "PRODUCT_NOT_FOUND"

	// TypePriceUnavailable indicates a missing or non-positive price for a
	// requested sales channel
	TypePriceUnavailable Type = "PRICE_UNAVAILABLE"

	// TypeIntegrity indicates structurally invalid catalog or tier data,
	// raised only at load/maintenance time, never during a live quotation
	TypeIntegrity Type = "INTEGRITY_ERROR"

	// TypeVerification indicates a result whose verified contract failed —
	// the most severe classification, signaling a possible calculator bypass
	TypeVerification Type = "VERIFICATION_FAILURE"

	// TypeConfig indicates a configuration error
	TypeConfig Type = "CONFIG_ERROR"

	// TypeInternal indicates an internal error
	TypeInternal Type = "INTERNAL_ERROR"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// IsType checks if an error is of a specific type
func IsType(err error, t Type) bool {
	if e, ok := err.(*Error); ok {
		return e.Type == t
	}
	return false
}

// ParameterOutOfRange creates a parameter error naming the offending field
// and the rejected value.
func ParameterOutOfRange(field string, value interface{}, constraint string) *Error {
	return Newf(TypeParameterOutOfRange, "parameter %q out of range: %s", field, constraint).
		WithContext("field", field).
		WithContext("value", value)
}

// ProductNotFound creates a catalog-miss error carrying the attempted key.
func ProductNotFound(key string) *Error {
	return Newf(TypeProductNotFound, "product not found: %s", key).
		WithContext("lookup_key", key)
}

// PriceUnavailable creates a missing-price error carrying the SKU and channel.
func PriceUnavailable(sku, channel string) *Error {
	return Newf(TypePriceUnavailable, "no usable price for sku %s on channel %s", sku, channel).
		WithContext("sku", sku).
		WithContext("channel", channel)
}

// Integrity creates a catalog/tier data integrity error
func Integrity(message string) *Error {
	return New(TypeIntegrity, message)
}

// Verification creates a verification failure error
func Verification(message string) *Error {
	return New(TypeVerification, message)
}

// Config creates a configuration error
func Config(message string, cause error) *Error {
	return Wrap(TypeConfig, message, cause)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}
