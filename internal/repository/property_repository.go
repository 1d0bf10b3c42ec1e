package repository

import (
	"context"

	"github.com/honeynil/prop-token-ledger/internal/models"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=property_repository.go -destination=mocks/property_repository.go -package=mocks

// PropertyRepository owns properties.available_tokens and the investments table.
type PropertyRepository interface {
	Create(ctx context.Context, propertyID string, totalTokens int64) (*models.PropertyInventory, error)
	GetInventory(ctx context.Context, propertyID string) (*models.PropertyInventory, error)
	ReserveAndAllocate(ctx context.Context, propertyID, userID string, transactionID, tokens int64, totalAmount decimal.Decimal) (*models.Investment, error)
	GetInvestmentByTransaction(ctx context.Context, transactionID int64) (*models.Investment, error)
	ActiveInvestedTokens(ctx context.Context, propertyID string) (int64, error)
}
