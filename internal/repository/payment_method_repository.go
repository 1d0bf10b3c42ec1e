package repository

import (
	"context"

	"github.com/honeynil/prop-token-ledger/internal/models"
)

//go:generate mockgen -source=payment_method_repository.go -destination=mocks/payment_method_repository.go -package=mocks

type PaymentMethodRepository interface {
	GetByName(ctx context.Context, name string) (*models.PaymentMethod, error)
	List(ctx context.Context) ([]*models.PaymentMethod, error)
}
