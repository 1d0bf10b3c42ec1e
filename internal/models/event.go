package models

import "time"

// LedgerEvent is published after a transaction reaches a terminal status.
type LedgerEvent struct {
	EventID       string          `json:"event_id"`
	TransactionID int64           `json:"transaction_id"`
	UserID        string          `json:"user_id"`
	Type          TransactionType `json:"type"`
	Status        StatusType      `json:"status"`
	TokenAmount   int64           `json:"token_amount"`
	PropertyID    string          `json:"property_id,omitempty"`
	InvestmentID  int64           `json:"investment_id,omitempty"`
	Balance       int64           `json:"balance"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

type AccountAudit struct {
	UserID           string            `json:"user_id"`
	Account          *UserTokenAccount `json:"account"`
	JournalPurchased int64             `json:"journal_purchased"`
	JournalSpent     int64             `json:"journal_spent"`
	Consistent       bool              `json:"consistent"`
}

type PropertyAudit struct {
	PropertyID           string `json:"property_id"`
	TotalTokens          int64  `json:"total_tokens"`
	AvailableTokens      int64  `json:"available_tokens"`
	ActiveInvestedTokens int64  `json:"active_invested_tokens"`
	Consistent           bool   `json:"consistent"`
}
