package sentinel

import "errors"

// Sentinel dependency errors. Stores should return these (optionally wrapped)
// so services can translate them into domain errors exactly once.
var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidInput          = errors.New("invalid input")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrAllowanceRace         = errors.New("allowance must be zeroed before change")
	ErrOverflow              = errors.New("unsigned overflow")
	ErrReentrant             = errors.New("reentrant call")
	ErrUnavailable           = errors.New("unavailable")
)
