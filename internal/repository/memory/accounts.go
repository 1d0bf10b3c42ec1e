package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/honeynil/prop-token-ledger/internal/models"
	pkgerrors "github.com/honeynil/prop-token-ledger/pkg/errors"
)

type AccountRepository struct {
	mu        sync.Mutex
	accounts  map[string]*models.UserTokenAccount
	mutations map[int64]*models.AccountMutation
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts:  make(map[string]*models.UserTokenAccount),
		mutations: make(map[int64]*models.AccountMutation),
	}
}

func (r *AccountRepository) GetOrCreate(_ context.Context, userID string) (*models.UserTokenAccount, error) {
	if userID == "" {
		return nil, pkgerrors.ErrEmptyUserID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[userID]
	if !ok {
		now := time.Now()
		acc = &models.UserTokenAccount{UserID: userID, CreatedAt: now, UpdatedAt: now}
		r.accounts[userID] = acc
	}
	return copyAccount(acc), nil
}

func (r *AccountRepository) Get(_ context.Context, userID string) (*models.UserTokenAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[userID]
	if !ok {
		return nil, pkgerrors.ErrAccountNotFound
	}
	return copyAccount(acc), nil
}

func (r *AccountRepository) ApplyPurchase(_ context.Context, userID string, transactionID, amount int64) (*models.UserTokenAccount, error) {
	if amount <= 0 {
		return nil, pkgerrors.ErrInvalidAmount
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[userID]
	if !ok {
		return nil, pkgerrors.ErrAccountNotFound
	}
	if _, ok := r.mutations[transactionID]; ok {
		return nil, pkgerrors.ErrMutationApplied
	}
	now := time.Now()
	acc.Balance += amount
	acc.TotalPurchased += amount
	acc.LastPurchaseAt = &now
	acc.UpdatedAt = now
	r.mark(transactionID, userID, amount, now)
	return copyAccount(acc), nil
}

func (r *AccountRepository) ApplySpend(_ context.Context, userID string, transactionID, amount int64) (*models.UserTokenAccount, error) {
	if amount <= 0 {
		return nil, pkgerrors.ErrInvalidAmount
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[userID]
	if !ok {
		return nil, pkgerrors.ErrAccountNotFound
	}
	if _, ok := r.mutations[transactionID]; ok {
		return nil, pkgerrors.ErrMutationApplied
	}
	if acc.Balance < amount {
		return nil, pkgerrors.ErrInsufficientBalance
	}
	now := time.Now()
	acc.Balance -= amount
	acc.TotalSpent += amount
	acc.UpdatedAt = now
	r.mark(transactionID, userID, -amount, now)
	return copyAccount(acc), nil
}

func (r *AccountRepository) ReverseSpend(_ context.Context, userID string, transactionID, amount int64) (*models.UserTokenAccount, error) {
	if amount <= 0 {
		return nil, pkgerrors.ErrInvalidAmount
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m, err := r.unreversed(userID, transactionID, -amount)
	if err != nil {
		return nil, err
	}
	acc, ok := r.accounts[userID]
	if !ok {
		return nil, pkgerrors.ErrAccountNotFound
	}
	if acc.TotalSpent < amount {
		return nil, fmt.Errorf("total spent below reversal amount %d", amount)
	}
	now := time.Now()
	acc.Balance += amount
	acc.TotalSpent -= amount
	acc.UpdatedAt = now
	m.ReversedAt = &now
	return copyAccount(acc), nil
}

func (r *AccountRepository) ReversePurchase(_ context.Context, userID string, transactionID, amount int64) (*models.UserTokenAccount, error) {
	if amount <= 0 {
		return nil, pkgerrors.ErrInvalidAmount
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m, err := r.unreversed(userID, transactionID, amount)
	if err != nil {
		return nil, err
	}
	acc, ok := r.accounts[userID]
	if !ok {
		return nil, pkgerrors.ErrAccountNotFound
	}
	if acc.Balance < amount || acc.TotalPurchased < amount {
		return nil, pkgerrors.ErrInsufficientBalance
	}
	now := time.Now()
	acc.Balance -= amount
	acc.TotalPurchased -= amount
	acc.UpdatedAt = now
	m.ReversedAt = &now
	return copyAccount(acc), nil
}

func (r *AccountRepository) GetMutation(_ context.Context, transactionID int64) (*models.AccountMutation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.mutations[transactionID]
	if !ok {
		return nil, pkgerrors.ErrMutationNotFound
	}
	out := *m
	if m.ReversedAt != nil {
		t := *m.ReversedAt
		out.ReversedAt = &t
	}
	return &out, nil
}

// mark must be called with mu held.
func (r *AccountRepository) mark(transactionID int64, userID string, delta int64, at time.Time) {
	r.mutations[transactionID] = &models.AccountMutation{TransactionID: transactionID, UserID: userID, Delta: delta, CreatedAt: at}
}

// unreversed must be called with mu held.
func (r *AccountRepository) unreversed(userID string, transactionID, delta int64) (*models.AccountMutation, error) {
	m, ok := r.mutations[transactionID]
	if !ok || m.UserID != userID || m.Delta != delta {
		return nil, pkgerrors.ErrMutationNotFound
	}
	if m.Reversed() {
		return nil, pkgerrors.ErrMutationReversed
	}
	return m, nil
}

func copyAccount(acc *models.UserTokenAccount) *models.UserTokenAccount {
	out := *acc
	if acc.LastPurchaseAt != nil {
		t := *acc.LastPurchaseAt
		out.LastPurchaseAt = &t
	}
	return &out
}
