package repository

import (
	"context"

	"github.com/honeynil/prop-token-ledger/internal/models"
)

//go:generate mockgen -source=account_repository.go -destination=mocks/account_repository.go -package=mocks

// AccountRepository mutates balances only through single conditional statements.
// Every mutation records a marker keyed by the journal row that caused it, and a
// reversal must name the same row.
type AccountRepository interface {
	GetOrCreate(ctx context.Context, userID string) (*models.UserTokenAccount, error)
	Get(ctx context.Context, userID string) (*models.UserTokenAccount, error)
	ApplyPurchase(ctx context.Context, userID string, transactionID, amount int64) (*models.UserTokenAccount, error)
	ApplySpend(ctx context.Context, userID string, transactionID, amount int64) (*models.UserTokenAccount, error)
	ReverseSpend(ctx context.Context, userID string, transactionID, amount int64) (*models.UserTokenAccount, error)
	ReversePurchase(ctx context.Context, userID string, transactionID, amount int64) (*models.UserTokenAccount, error)
	GetMutation(ctx context.Context, transactionID int64) (*models.AccountMutation, error)
}
