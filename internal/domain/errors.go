package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Expected outcomes: benign races and replays, logged at notice level.
	ErrorCodeStateMismatch     ErrorCode = "STATE_MISMATCH"
	ErrorCodeIllegalTransition ErrorCode = "ILLEGAL_TRANSITION"
	ErrorCodeAlreadyProcessed  ErrorCode = "ALREADY_PROCESSED"

	// Fatal failures: contract breaks, configuration holes, gateway trouble.
	ErrorCodeConfigMissing      ErrorCode = "CONFIG_MISSING"
	ErrorCodeMalformedResponse  ErrorCode = "MALFORMED_RESPONSE"
	ErrorCodeGatewayError       ErrorCode = "GATEWAY_ERROR"
	ErrorCodeReferenceNotFound  ErrorCode = "REFERENCE_NOT_FOUND"
	ErrorCodePaymentNotFound    ErrorCode = "PAYMENT_NOT_FOUND"
	ErrorCodeTransactionMissing ErrorCode = "TRANSACTION_MISSING"
	ErrorCodeDatabaseError      ErrorCode = "DATABASE_ERROR"
	ErrorCodeInternalError      ErrorCode = "INTERNAL_ERROR"
)

// expectedCodes are normal control-flow outcomes, not faults. A losing
// concurrent reconciliation or a replayed webhook lands here.
var expectedCodes = map[ErrorCode]bool{
	ErrorCodeStateMismatch:     true,
	ErrorCodeIllegalTransition: true,
	ErrorCodeAlreadyProcessed:  true,
}

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail field to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// IsDomainError checks if an error is a DomainError with the given code
func IsDomainError(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// IsExpected reports whether the error is an expected control-flow outcome
// (state mismatch, replay, already-processed) rather than a fault. Callers use
// this to pick logging severity without matching message strings.
func IsExpected(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return expectedCodes[domainErr.Code]
	}
	return false
}

// GetErrorCode extracts the error code from an error, returns empty string if not a DomainError
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}
