package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/honeynil/prop-token-ledger/internal/models"
	pkgerrors "github.com/honeynil/prop-token-ledger/pkg/errors"
	"github.com/shopspring/decimal"
)

type PaymentMethodRepository struct {
	mu      sync.RWMutex
	methods map[string]models.PaymentMethod
}

func NewPaymentMethodRepository(methods ...models.PaymentMethod) *PaymentMethodRepository {
	r := &PaymentMethodRepository{methods: make(map[string]models.PaymentMethod)}
	for _, m := range methods {
		r.methods[m.Name] = m
	}
	return r
}

// DefaultPaymentMethods mirrors the rows seeded by the postgres schema.
func DefaultPaymentMethods() []models.PaymentMethod {
	return []models.PaymentMethod{
		{
			Name:        "bank_transfer",
			DisplayName: "Bank transfer",
			FeePercent:  decimal.Zero,
			MinAmount:   decimal.NewFromInt(1000),
			MaxAmount:   decimal.NewFromInt(1000000),
			Active:      true,
		},
		{
			Name:        "card",
			DisplayName: "Debit / credit card",
			FeePercent:  decimal.RequireFromString("2.5"),
			MinAmount:   decimal.NewFromInt(1000),
			MaxAmount:   decimal.NewFromInt(200000),
			Active:      true,
		},
	}
}

func (r *PaymentMethodRepository) GetByName(_ context.Context, name string) (*models.PaymentMethod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.methods[name]
	if !ok || !m.Active {
		return nil, pkgerrors.ErrPaymentMethodNotFound
	}
	return &m, nil
}

func (r *PaymentMethodRepository) List(_ context.Context) ([]*models.PaymentMethod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.PaymentMethod, 0, len(r.methods))
	for _, m := range r.methods {
		if m.Active {
			m := m
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
