package repository

import (
	"context"
	"iter"
	"time"

	"github.com/honeynil/prop-token-ledger/internal/models"
)

//go:generate mockgen -source=transaction_repository.go -destination=mocks/transaction_repository.go -package=mocks

// TransactionRepository is the append-only journal. Rows are inserted pending and
// move exactly once into a terminal status.
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.TokenTransaction) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.TokenTransaction, error)
	GetByPaymentReference(ctx context.Context, method, reference string) (*models.TokenTransaction, error)
	MarkCompleted(ctx context.Context, id int64) (*models.TokenTransaction, error)
	MarkFailed(ctx context.Context, id int64) (*models.TokenTransaction, error)
	MarkCancelled(ctx context.Context, id int64) (*models.TokenTransaction, error)
	ListForUser(ctx context.Context, userID string, limit int) iter.Seq2[*models.TokenTransaction, error]
	ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*models.TokenTransaction, error)
	SumCompleted(ctx context.Context, userID string) (purchased, spent int64, err error)
}
