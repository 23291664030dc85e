package errors

import (
	"fmt"
)

// ErrorCategory groups normalized decline codes by what a caller can do
// about the failure: collect different card data, escalate to the issuer,
// fix the merchant configuration, or retry later.
type ErrorCategory string

const (
	CategoryCard       ErrorCategory = "card"       // unusable card data
	CategoryDeclined   ErrorCategory = "declined"   // issuer said no
	CategoryFraud      ErrorCategory = "fraud"      // pickup / contact issuer
	CategoryProcessing ErrorCategory = "processing" // vendor-side failure
	CategoryConfig     ErrorCategory = "config"     // merchant account problem
)

// PaymentError is a declined gateway result promoted to a Go error, for
// callers whose boundaries deal in errors rather than result structs.
// Code carries the normalized decline code and Message the vendor's text.
type PaymentError struct {
	Code      string
	Message   string
	Category  ErrorCategory
	Retriable bool
}

func (e *PaymentError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Code
}

// NewPaymentError creates a new payment error
func NewPaymentError(code, message string, category ErrorCategory, retriable bool) *PaymentError {
	return &PaymentError{
		Code:      code,
		Message:   message,
		Category:  category,
		Retriable: retriable,
	}
}

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// TransportError represents a non-2xx HTTP response from a gateway.
// The raw body is preserved so adapters can still extract vendor error
// details from failed HTTP calls before giving up.
type TransportError struct {
	StatusCode int
	Body       []byte
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gateway returned HTTP %d", e.StatusCode)
}

// NewTransportError creates a new transport error carrying the raw response body
func NewTransportError(statusCode int, body []byte) *TransportError {
	return &TransportError{
		StatusCode: statusCode,
		Body:       body,
	}
}
