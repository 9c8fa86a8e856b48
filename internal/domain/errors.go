package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Error kinds. Match with errors.Is; handlers map them to status codes.
var (
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	ErrInsufficientData     = errors.New("insufficient data")
	ErrUnavailable          = errors.New("unavailable")
	ErrPersistence          = errors.New("persistence failure")
)

// Error carries a user-facing message, its kind and an optional cause.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func newError(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func InvalidArgument(format string, args ...interface{}) error {
	return newError(ErrInvalidArgument, format, args...)
}

func NotFound(format string, args ...interface{}) error {
	return newError(ErrNotFound, format, args...)
}

func Conflict(format string, args ...interface{}) error {
	return newError(ErrConflict, format, args...)
}

func InsufficientData(format string, args ...interface{}) error {
	return newError(ErrInsufficientData, format, args...)
}

// Unavailable marks a transient collaborator failure; the caller may retry.
func Unavailable(cause error, format string, args ...interface{}) error {
	return &Error{Kind: ErrUnavailable, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Persistence reports an atomic unit that was rolled back.
func Persistence(cause error) error {
	return &Error{Kind: ErrPersistence, Message: "The ledger transaction could not be committed.", Cause: cause}
}

// InsufficientFundsError is returned when a withdrawal or buy exceeds the cash balance.
type InsufficientFundsError struct {
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("Insufficient funds. Requested: %s, Available: %s",
		e.Requested.StringFixed(2), e.Available.StringFixed(2))
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// InsufficientHoldingsError is returned when a sell exceeds the held volume.
type InsufficientHoldingsError struct {
	Ticker    string
	Available decimal.Decimal
	Attempted decimal.Decimal
}

func (e *InsufficientHoldingsError) Error() string {
	return fmt.Sprintf("Not enough volume of %s to sell. Available: %s, Attempted: %s",
		e.Ticker, e.Available.StringFixed(4), e.Attempted.StringFixed(4))
}

func (e *InsufficientHoldingsError) Is(target error) bool {
	return target == ErrInsufficientHoldings
}

// IsDomainError reports whether err already belongs to the taxonomy above.
func IsDomainError(err error) bool {
	var de *Error
	if errors.As(err, &de) {
		return true
	}
	return errors.Is(err, ErrInsufficientFunds) || errors.Is(err, ErrInsufficientHoldings)
}
