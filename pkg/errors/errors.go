package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest         = errors.New("invalid request")
	ErrInvalidAmount          = fmt.Errorf("%w: token amount must be positive", ErrInvalidRequest)
	ErrInvalidCurrency        = fmt.Errorf("%w: currency amount must not be negative", ErrInvalidRequest)
	ErrInvalidPaymentMethod   = fmt.Errorf("%w: unknown payment method", ErrInvalidRequest)
	ErrAmountOutOfBounds      = fmt.Errorf("%w: amount outside payment method bounds", ErrInvalidRequest)
	ErrInvalidTransactionType = fmt.Errorf("%w: invalid transaction type", ErrInvalidRequest)
	ErrUnknownField           = fmt.Errorf("%w: unknown field", ErrInvalidRequest)
	ErrEmptyUserID            = fmt.Errorf("%w: user id is required", ErrInvalidRequest)
	ErrEmptyPropertyID        = fmt.Errorf("%w: property id is required", ErrInvalidRequest)

	ErrNotFound              = errors.New("not found")
	ErrAccountNotFound       = fmt.Errorf("account %w", ErrNotFound)
	ErrTransactionNotFound   = fmt.Errorf("transaction %w", ErrNotFound)
	ErrPropertyNotFound      = fmt.Errorf("property %w", ErrNotFound)
	ErrPaymentMethodNotFound = fmt.Errorf("payment method %w", ErrNotFound)
	ErrInvestmentNotFound    = fmt.Errorf("investment %w", ErrNotFound)
	ErrMutationNotFound      = fmt.Errorf("account mutation %w", ErrNotFound)

	ErrInsufficientBalance       = errors.New("insufficient balance")
	ErrInsufficientInventory     = errors.New("insufficient inventory")
	ErrInvalidTransition         = errors.New("invalid transaction status transition")
	ErrDuplicatePaymentReference = fmt.Errorf("%w: payment reference already used", ErrInvalidRequest)
	ErrRequestInProgress         = errors.New("request already in progress")
	ErrPropertyExists            = errors.New("property already exists")
	ErrNilTransaction            = errors.New("transaction is nil")
	ErrMutationApplied           = errors.New("transaction already mutated the account")
	ErrMutationReversed          = errors.New("account mutation already reversed")

	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

const (
	CodeInvalidRequest        = "INVALID_REQUEST"
	CodeInsufficientBalance   = "INSUFFICIENT_BALANCE"
	CodeInsufficientInventory = "INSUFFICIENT_INVENTORY"
	CodeNotFound              = "NOT_FOUND"
	CodeRequestInProgress     = "REQUEST_IN_PROGRESS"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeForbidden             = "FORBIDDEN"
	CodeInternal              = "INTERNAL"
)

// Code maps an error onto the stable code returned to API callers.
// ErrInvalidTransition is an orchestration bug and is reported as internal.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidRequest):
		return CodeInvalidRequest
	case errors.Is(err, ErrInsufficientBalance):
		return CodeInsufficientBalance
	case errors.Is(err, ErrInsufficientInventory):
		return CodeInsufficientInventory
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrRequestInProgress):
		return CodeRequestInProgress
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	default:
		return CodeInternal
	}
}
