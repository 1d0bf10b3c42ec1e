package models

import "time"

type UserTokenAccount struct {
	UserID         string     `json:"user_id"`
	Balance        int64      `json:"balance"`
	TotalPurchased int64      `json:"total_purchased"`
	TotalSpent     int64      `json:"total_spent"`
	LastPurchaseAt *time.Time `json:"last_purchase_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Consistent reports whether the balance equals lifetime purchases minus spend.
func (a *UserTokenAccount) Consistent() bool {
	return a.Balance >= 0 && a.Balance == a.TotalPurchased-a.TotalSpent
}

// AccountMutation is the counter change one journal row made. Delta is positive
// for credits and negative for debits. A reversal stamps ReversedAt and keeps the row.
type AccountMutation struct {
	TransactionID int64      `json:"transaction_id"`
	UserID        string     `json:"user_id"`
	Delta         int64      `json:"delta"`
	ReversedAt    *time.Time `json:"reversed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (m *AccountMutation) Reversed() bool {
	return m.ReversedAt != nil
}
