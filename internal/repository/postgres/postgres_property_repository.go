package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/honeynil/prop-token-ledger/internal/infrastructure/observability"
	"github.com/honeynil/prop-token-ledger/internal/models"
	pkgerrors "github.com/honeynil/prop-token-ledger/pkg/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const propertyTracer = "property-repository"

type PostgresPropertyRepository struct {
	db *sql.DB
}

func NewPostgresPropertyRepository(db *sql.DB) *PostgresPropertyRepository {
	return &PostgresPropertyRepository{db: db}
}

func (r *PostgresPropertyRepository) Create(ctx context.Context, propertyID string, totalTokens int64) (inv *models.PropertyInventory, err error) {
	ctx, finish := observability.StartRepositoryCall(ctx, propertyTracer, "CreateProperty",
		attribute.String("property_id", propertyID),
		attribute.Int64("total_tokens", totalTokens),
	)
	defer finish(&err)

	if propertyID == "" {
		err = pkgerrors.ErrEmptyPropertyID
		return nil, err
	}
	if totalTokens < 0 {
		err = pkgerrors.ErrInvalidAmount
		return nil, err
	}

	inv = &models.PropertyInventory{PropertyID: propertyID, TotalTokens: totalTokens, AvailableTokens: totalTokens}
	query := `INSERT INTO properties (id, total_tokens, available_tokens) VALUES ($1, $2, $2) RETURNING updated_at`
	err = r.db.QueryRowContext(ctx, query, propertyID, totalTokens).Scan(&inv.UpdatedAt)
	if err != nil {
		if domainErr := classifyConstraintError(err); domainErr != nil {
			err = domainErr
			return nil, err
		}
		slog.Error("failed to create property", "method", "Create", "property_id", propertyID, "error", err)
		err = fmt.Errorf("failed to create property: %w", err)
		return nil, err
	}

	slog.Info("property inventory created", "method", "Create", "property_id", propertyID, "total_tokens", totalTokens)
	return inv, nil
}

func (r *PostgresPropertyRepository) GetInventory(ctx context.Context, propertyID string) (inv *models.PropertyInventory, err error) {
	ctx, finish := observability.StartRepositoryCall(ctx, propertyTracer, "GetInventory", attribute.String("property_id", propertyID))
	defer finish(&err)

	inv = &models.PropertyInventory{}
	query := `SELECT id, total_tokens, available_tokens, updated_at FROM properties WHERE id = $1`
	err = r.db.QueryRowContext(ctx, query, propertyID).Scan(&inv.PropertyID, &inv.TotalTokens, &inv.AvailableTokens, &inv.UpdatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrPropertyNotFound
		return nil, err
	}
	if err != nil {
		slog.Error("failed to get inventory", "method", "GetInventory", "property_id", propertyID, "error", err)
		err = fmt.Errorf("failed to get inventory: %w", err)
		return nil, err
	}
	return inv, nil
}

// ReserveAndAllocate decrements available_tokens only when it covers the request
// and inserts the investment in the same database transaction. The UPDATE holds the
// property row lock until commit, so concurrent allocators on one property queue up
// and each re-checks the predicate against the committed value.
func (r *PostgresPropertyRepository) ReserveAndAllocate(ctx context.Context, propertyID, userID string, transactionID, tokens int64, totalAmount decimal.Decimal) (inv *models.Investment, err error) {
	ctx, finish := observability.StartRepositoryCall(ctx, propertyTracer, "ReserveAndAllocate",
		attribute.String("property_id", propertyID),
		attribute.String("user_id", userID),
		attribute.Int64("tokens", tokens),
	)
	defer finish(&err)

	if tokens <= 0 {
		err = pkgerrors.ErrInvalidAmount
		return nil, err
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed to begin transaction", "method", "ReserveAndAllocate", "error", err)
		err = fmt.Errorf("failed to begin transaction: %w", err)
		return nil, err
	}
	defer rollback(dbTx, "ReserveAndAllocate")

	var available int64
	reserve := `UPDATE properties SET available_tokens = available_tokens - $2, updated_at = NOW() WHERE id = $1 AND available_tokens >= $2 RETURNING available_tokens`
	err = dbTx.QueryRowContext(ctx, reserve, propertyID, tokens).Scan(&available)
	if stderrors.Is(err, sql.ErrNoRows) {
		err = r.missOrSoldOut(ctx, dbTx, propertyID)
		slog.Warn("allocation rejected", "method", "ReserveAndAllocate", "property_id", propertyID, "user_id", userID, "tokens", tokens, "error", err)
		return nil, err
	}
	if err != nil {
		slog.Error("failed to reserve inventory", "method", "ReserveAndAllocate", "property_id", propertyID, "error", err)
		err = fmt.Errorf("failed to reserve inventory: %w", err)
		return nil, err
	}

	inv = &models.Investment{
		PropertyID:      propertyID,
		UserID:          userID,
		TransactionID:   transactionID,
		TokensPurchased: tokens,
		TotalAmount:     totalAmount,
		Status:          models.InvestmentActive,
	}
	insert := `INSERT INTO investments (property_id, user_id, transaction_id, tokens_purchased, total_amount, status) VALUES ($1, $2, $3, $4, $5, 'active') RETURNING id, created_at`
	var createdAt time.Time
	err = dbTx.QueryRowContext(ctx, insert, propertyID, userID, transactionID, tokens, totalAmount).Scan(&inv.ID, &createdAt)
	if err != nil {
		slog.Error("failed to insert investment", "method", "ReserveAndAllocate", "property_id", propertyID, "user_id", userID, "error", err)
		err = fmt.Errorf("failed to insert investment: %w", err)
		return nil, err
	}
	inv.CreatedAt = createdAt

	if err = dbTx.Commit(); err != nil {
		slog.Error("failed to commit allocation", "method", "ReserveAndAllocate", "property_id", propertyID, "error", err)
		err = fmt.Errorf("failed to commit allocation: %w", err)
		return nil, err
	}

	slog.Info("tokens allocated", "method", "ReserveAndAllocate", "property_id", propertyID, "user_id", userID, "investment_id", inv.ID, "tokens", tokens, "available_tokens", available)
	return inv, nil
}

func (r *PostgresPropertyRepository) missOrSoldOut(ctx context.Context, dbTx *sql.Tx, propertyID string) error {
	var exists bool
	err := dbTx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM properties WHERE id = $1)`, propertyID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check property: %w", err)
	}
	if !exists {
		return pkgerrors.ErrPropertyNotFound
	}
	return pkgerrors.ErrInsufficientInventory
}

func (r *PostgresPropertyRepository) GetInvestmentByTransaction(ctx context.Context, transactionID int64) (inv *models.Investment, err error) {
	ctx, finish := observability.StartRepositoryCall(ctx, propertyTracer, "GetInvestmentByTransaction", attribute.Int64("transaction_id", transactionID))
	defer finish(&err)

	inv = &models.Investment{}
	query := `SELECT id, property_id, user_id, transaction_id, tokens_purchased, total_amount, status, created_at FROM investments WHERE transaction_id = $1`
	err = r.db.QueryRowContext(ctx, query, transactionID).Scan(
		&inv.ID,
		&inv.PropertyID,
		&inv.UserID,
		&inv.TransactionID,
		&inv.TokensPurchased,
		&inv.TotalAmount,
		&inv.Status,
		&inv.CreatedAt,
	)
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrInvestmentNotFound
		return nil, err
	}
	if err != nil {
		slog.Error("failed to get investment", "method", "GetInvestmentByTransaction", "transaction_id", transactionID, "error", err)
		err = fmt.Errorf("failed to get investment: %w", err)
		return nil, err
	}
	return inv, nil
}

func (r *PostgresPropertyRepository) ActiveInvestedTokens(ctx context.Context, propertyID string) (total int64, err error) {
	ctx, finish := observability.StartRepositoryCall(ctx, propertyTracer, "ActiveInvestedTokens", attribute.String("property_id", propertyID))
	defer finish(&err)

	query := `SELECT COALESCE(SUM(tokens_purchased), 0) FROM investments WHERE property_id = $1 AND status = 'active'`
	err = r.db.QueryRowContext(ctx, query, propertyID).Scan(&total)
	if err != nil {
		slog.Error("failed to sum active investments", "method", "ActiveInvestedTokens", "property_id", propertyID, "error", err)
		err = fmt.Errorf("failed to sum active investments: %w", err)
		return 0, err
	}
	return total, nil
}
