package models

import "github.com/shopspring/decimal"

type PaymentMethod struct {
	Name        string          `json:"name"`
	DisplayName string          `json:"display_name"`
	FeePercent  decimal.Decimal `json:"fee_percent"`
	MinAmount   decimal.Decimal `json:"min_amount"`
	MaxAmount   decimal.Decimal `json:"max_amount"`
	Active      bool            `json:"active"`
}

// InBounds reports whether amount lies in [MinAmount, MaxAmount].
func (m *PaymentMethod) InBounds(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(m.MinAmount) && amount.LessThanOrEqual(m.MaxAmount)
}

// Fee is informational only; the ledger never charges it.
func (m *PaymentMethod) Fee(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(m.FeePercent).Div(decimal.NewFromInt(100)).Round(2)
}
