package domainerrors

import "errors"

// Code represents a domain error category independent of transport layer.
// These codes describe what went wrong in ledger terms, not HTTP terms.
type Code string

const (
	CodeNotFound     Code = "not_found"
	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"
	CodeInternal     Code = "internal_error"
	CodeConflict     Code = "conflict"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"

	// Validation errors raised before any ledger state is touched.
	CodeInvalidAddress Code = "invalid_address"
	CodeInvalidAmount  Code = "invalid_amount"
	CodeBatchTooLarge  Code = "batch_too_large"

	// Policy errors raised by the transfer gate and allowance guard.
	CodePaused                  Code = "paused"
	CodeNotPaused               Code = "not_paused"
	CodeAlreadyPaused           Code = "already_paused"
	CodeAccountBlacklisted      Code = "account_blacklisted"
	CodeSenderNotWhitelisted    Code = "sender_not_whitelisted"
	CodeRecipientNotWhitelisted Code = "recipient_not_whitelisted"
	CodeApproveRace             Code = "approve_race_condition"

	// Arithmetic errors raised by the ledger bookkeeping.
	CodeInsufficientBalance   Code = "insufficient_balance"
	CodeInsufficientAllowance Code = "insufficient_allowance"
	CodeOverflow              Code = "arithmetic_overflow"

	// Reentrancy is fatal for the offending call but leaves state untouched.
	CodeReentrant Code = "reentrant_call"
)

// Error wraps domain or infrastructure failures with a stable code.
// It is transport-agnostic and can be used across service, store, and other layers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if an error is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
