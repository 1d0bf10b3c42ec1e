package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TokenTransaction struct {
	ID                  int64           `json:"id"`
	UserID              string          `json:"user_id"`
	Type                TransactionType `json:"type"`
	TokenAmount         int64           `json:"token_amount"`
	LocalCurrencyAmount decimal.Decimal `json:"local_currency_amount"`
	PaymentMethod       string          `json:"payment_method,omitempty"`
	PaymentReference    string          `json:"payment_reference,omitempty"`
	PropertyID          string          `json:"property_id,omitempty"`
	Status              StatusType      `json:"status"`
	CreatedAt           time.Time       `json:"created_at"`
	CompletedAt         *time.Time      `json:"completed_at,omitempty"`
}

type TransactionType string

const (
	TypePurchase TransactionType = "purchase"
	TypeSpend    TransactionType = "spend"
	TypeRefund   TransactionType = "refund"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TypePurchase, TypeSpend, TypeRefund:
		return true
	}
	return false
}

type StatusType string

const (
	StatusPending   StatusType = "pending"
	StatusCompleted StatusType = "completed"
	StatusFailed    StatusType = "failed"
	StatusCancelled StatusType = "cancelled"
)

// Terminal reports whether no further transition out of s is allowed.
func (s StatusType) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// CanTransition reports whether the journal state machine allows from -> to.
// Only pending rows move, and only into a terminal state.
func CanTransition(from, to StatusType) bool {
	return from == StatusPending && to.Terminal()
}
