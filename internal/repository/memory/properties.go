package memory

import (
	"context"
	"sync"
	"time"

	"github.com/honeynil/prop-token-ledger/internal/models"
	pkgerrors "github.com/honeynil/prop-token-ledger/pkg/errors"
	"github.com/shopspring/decimal"
)

type PropertyRepository struct {
	mu          sync.Mutex
	inventory   map[string]*models.PropertyInventory
	investments []models.Investment
	nextID      int64
}

func NewPropertyRepository() *PropertyRepository {
	return &PropertyRepository{inventory: make(map[string]*models.PropertyInventory)}
}

func (r *PropertyRepository) Create(_ context.Context, propertyID string, totalTokens int64) (*models.PropertyInventory, error) {
	if propertyID == "" {
		return nil, pkgerrors.ErrEmptyPropertyID
	}
	if totalTokens < 0 {
		return nil, pkgerrors.ErrInvalidAmount
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.inventory[propertyID]; ok {
		return nil, pkgerrors.ErrPropertyExists
	}
	inv := &models.PropertyInventory{
		PropertyID:      propertyID,
		TotalTokens:     totalTokens,
		AvailableTokens: totalTokens,
		UpdatedAt:       time.Now(),
	}
	r.inventory[propertyID] = inv
	out := *inv
	return &out, nil
}

func (r *PropertyRepository) GetInventory(_ context.Context, propertyID string) (*models.PropertyInventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.inventory[propertyID]
	if !ok {
		return nil, pkgerrors.ErrPropertyNotFound
	}
	out := *inv
	return &out, nil
}

// ReserveAndAllocate checks, decrements and records under one lock, so no reader
// sees the decrement without the investment.
func (r *PropertyRepository) ReserveAndAllocate(_ context.Context, propertyID, userID string, transactionID, tokens int64, totalAmount decimal.Decimal) (*models.Investment, error) {
	if tokens <= 0 {
		return nil, pkgerrors.ErrInvalidAmount
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.inventory[propertyID]
	if !ok {
		return nil, pkgerrors.ErrPropertyNotFound
	}
	if inv.AvailableTokens < tokens {
		return nil, pkgerrors.ErrInsufficientInventory
	}

	now := time.Now()
	inv.AvailableTokens -= tokens
	inv.UpdatedAt = now
	r.nextID++
	investment := models.Investment{
		ID:              r.nextID,
		PropertyID:      propertyID,
		UserID:          userID,
		TransactionID:   transactionID,
		TokensPurchased: tokens,
		TotalAmount:     totalAmount,
		Status:          models.InvestmentActive,
		CreatedAt:       now,
	}
	r.investments = append(r.investments, investment)
	return &investment, nil
}

func (r *PropertyRepository) GetInvestmentByTransaction(_ context.Context, transactionID int64) (*models.Investment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.investments {
		if inv.TransactionID == transactionID {
			return &inv, nil
		}
	}
	return nil, pkgerrors.ErrInvestmentNotFound
}

func (r *PropertyRepository) ActiveInvestedTokens(_ context.Context, propertyID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, inv := range r.investments {
		if inv.PropertyID == propertyID && inv.Status == models.InvestmentActive {
			total += inv.TokensPurchased
		}
	}
	return total, nil
}
