package memory

import (
	"context"
	"iter"
	"sort"
	"sync"
	"time"

	"github.com/honeynil/prop-token-ledger/internal/models"
	pkgerrors "github.com/honeynil/prop-token-ledger/pkg/errors"
)

type TransactionRepository struct {
	mu     sync.Mutex
	rows   []models.TokenTransaction
	byID   map[int64]int
	nextID int64
	now    func() time.Time
}

func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{
		byID: make(map[int64]int),
		now:  time.Now,
	}
}

// SetClock replaces the time source used for created_at and completed_at.
func (r *TransactionRepository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

func (r *TransactionRepository) Create(_ context.Context, tx *models.TokenTransaction) (int64, error) {
	if tx == nil {
		return 0, pkgerrors.ErrNilTransaction
	}
	if !tx.Type.Valid() {
		return 0, pkgerrors.ErrInvalidTransactionType
	}
	if tx.TokenAmount <= 0 {
		return 0, pkgerrors.ErrInvalidAmount
	}
	if tx.LocalCurrencyAmount.IsNegative() {
		return 0, pkgerrors.ErrInvalidCurrency
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if tx.Type == models.TypePurchase && tx.PaymentReference != "" {
		for i := range r.rows {
			row := &r.rows[i]
			if row.Type == models.TypePurchase &&
				row.PaymentMethod == tx.PaymentMethod &&
				row.PaymentReference == tx.PaymentReference &&
				(row.Status == models.StatusPending || row.Status == models.StatusCompleted) {
				return 0, pkgerrors.ErrDuplicatePaymentReference
			}
		}
	}

	r.nextID++
	tx.ID = r.nextID
	tx.Status = models.StatusPending
	tx.CreatedAt = r.now()
	tx.CompletedAt = nil
	r.byID[tx.ID] = len(r.rows)
	r.rows = append(r.rows, *tx)
	return tx.ID, nil
}

func (r *TransactionRepository) GetByID(_ context.Context, id int64) (*models.TokenTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.byID[id]
	if !ok {
		return nil, pkgerrors.ErrTransactionNotFound
	}
	row := r.rows[i]
	return &row, nil
}

func (r *TransactionRepository) GetByPaymentReference(_ context.Context, method, reference string) (*models.TokenTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.rows) - 1; i >= 0; i-- {
		row := r.rows[i]
		if row.Type == models.TypePurchase && row.PaymentMethod == method && row.PaymentReference == reference {
			return &row, nil
		}
	}
	return nil, pkgerrors.ErrTransactionNotFound
}

func (r *TransactionRepository) MarkCompleted(ctx context.Context, id int64) (*models.TokenTransaction, error) {
	return r.transition(ctx, id, models.StatusCompleted)
}

func (r *TransactionRepository) MarkFailed(ctx context.Context, id int64) (*models.TokenTransaction, error) {
	return r.transition(ctx, id, models.StatusFailed)
}

func (r *TransactionRepository) MarkCancelled(ctx context.Context, id int64) (*models.TokenTransaction, error) {
	return r.transition(ctx, id, models.StatusCancelled)
}

func (r *TransactionRepository) transition(_ context.Context, id int64, to models.StatusType) (*models.TokenTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.byID[id]
	if !ok {
		return nil, pkgerrors.ErrTransactionNotFound
	}
	row := &r.rows[i]
	if !models.CanTransition(row.Status, to) {
		return nil, pkgerrors.ErrInvalidTransition
	}
	row.Status = to
	if to == models.StatusCompleted {
		t := r.now()
		row.CompletedAt = &t
	}
	out := *row
	return &out, nil
}

func (r *TransactionRepository) ListForUser(_ context.Context, userID string, limit int) iter.Seq2[*models.TokenTransaction, error] {
	return func(yield func(*models.TokenTransaction, error) bool) {
		if limit <= 0 {
			return
		}
		r.mu.Lock()
		var matched []models.TokenTransaction
		for i := len(r.rows) - 1; i >= 0 && len(matched) < limit; i-- {
			if r.rows[i].UserID == userID {
				matched = append(matched, r.rows[i])
			}
		}
		r.mu.Unlock()

		for i := range matched {
			if !yield(&matched[i], nil) {
				return
			}
		}
	}
}

func (r *TransactionRepository) ListPendingOlderThan(_ context.Context, cutoff time.Time, limit int) ([]*models.TokenTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.TokenTransaction
	for i := range r.rows {
		row := r.rows[i]
		if row.Status == models.StatusPending && row.CreatedAt.Before(cutoff) {
			out = append(out, &row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *TransactionRepository) SumCompleted(_ context.Context, userID string) (purchased, spent int64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.UserID != userID || row.Status != models.StatusCompleted {
			continue
		}
		switch row.Type {
		case models.TypePurchase:
			purchased += row.TokenAmount
		case models.TypeSpend:
			spent += row.TokenAmount
		}
	}
	return purchased, spent, nil
}
