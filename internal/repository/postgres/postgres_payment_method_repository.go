package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/honeynil/prop-token-ledger/internal/infrastructure/observability"
	"github.com/honeynil/prop-token-ledger/internal/models"
	pkgerrors "github.com/honeynil/prop-token-ledger/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

const paymentMethodTracer = "payment-method-repository"

// PostgresPaymentMethodRepository reads the admin-managed catalog. The ledger never
// writes it.
type PostgresPaymentMethodRepository struct {
	db *sql.DB
}

func NewPostgresPaymentMethodRepository(db *sql.DB) *PostgresPaymentMethodRepository {
	return &PostgresPaymentMethodRepository{db: db}
}

func (r *PostgresPaymentMethodRepository) GetByName(ctx context.Context, name string) (m *models.PaymentMethod, err error) {
	ctx, finish := observability.StartRepositoryCall(ctx, paymentMethodTracer, "GetPaymentMethod", attribute.String("name", name))
	defer finish(&err)

	m = &models.PaymentMethod{}
	query := `SELECT name, display_name, fee_percent, min_amount, max_amount, active FROM payment_methods WHERE name = $1 AND active`
	err = r.db.QueryRowContext(ctx, query, name).Scan(&m.Name, &m.DisplayName, &m.FeePercent, &m.MinAmount, &m.MaxAmount, &m.Active)
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrPaymentMethodNotFound
		return nil, err
	}
	if err != nil {
		slog.Error("failed to get payment method", "method", "GetByName", "name", name, "error", err)
		err = fmt.Errorf("failed to get payment method: %w", err)
		return nil, err
	}
	return m, nil
}

func (r *PostgresPaymentMethodRepository) List(ctx context.Context) (methods []*models.PaymentMethod, err error) {
	ctx, finish := observability.StartRepositoryCall(ctx, paymentMethodTracer, "ListPaymentMethods")
	defer finish(&err)

	query := `SELECT name, display_name, fee_percent, min_amount, max_amount, active FROM payment_methods WHERE active ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Error("failed to list payment methods", "method", "List", "error", err)
		err = fmt.Errorf("failed to list payment methods: %w", err)
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var m models.PaymentMethod
		if err = rows.Scan(&m.Name, &m.DisplayName, &m.FeePercent, &m.MinAmount, &m.MaxAmount, &m.Active); err != nil {
			err = fmt.Errorf("failed to scan payment method: %w", err)
			return nil, err
		}
		methods = append(methods, &m)
	}
	if err = rows.Err(); err != nil {
		err = fmt.Errorf("failed to iterate payment methods: %w", err)
		return nil, err
	}
	return methods, nil
}
