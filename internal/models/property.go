package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PropertyInventory struct {
	PropertyID      string    `json:"property_id"`
	TotalTokens     int64     `json:"total_tokens"`
	AvailableTokens int64     `json:"available_tokens"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (p *PropertyInventory) Allocated() int64 {
	return p.TotalTokens - p.AvailableTokens
}

type Investment struct {
	ID              int64            `json:"id"`
	PropertyID      string           `json:"property_id"`
	UserID          string           `json:"user_id"`
	TransactionID   int64            `json:"transaction_id"`
	TokensPurchased int64            `json:"tokens_purchased"`
	TotalAmount     decimal.Decimal  `json:"total_amount"`
	Status          InvestmentStatus `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
}

type InvestmentStatus string

const (
	InvestmentActive    InvestmentStatus = "active"
	InvestmentSold      InvestmentStatus = "sold"
	InvestmentCancelled InvestmentStatus = "cancelled"
)
