package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"iter"
	"log/slog"
	"math"
	"time"

	"github.com/honeynil/prop-token-ledger/internal/infrastructure/observability"
	"github.com/honeynil/prop-token-ledger/internal/models"
	pkgerrors "github.com/honeynil/prop-token-ledger/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

const (
	transactionTracer = "transaction-repository"
	listPageSize      = 100

	transactionColumns = `id, user_id, type, token_amount, local_currency_amount, payment_method, payment_reference, property_id, status, created_at, completed_at`
)

type PostgresTransactionRepository struct {
	db *sql.DB
}

func NewPostgresTransactionRepository(db *sql.DB) *PostgresTransactionRepository {
	return &PostgresTransactionRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.TokenTransaction, error) {
	var (
		tx                          models.TokenTransaction
		method, reference, property sql.NullString
		completedAt                 sql.NullTime
	)
	err := row.Scan(&tx.ID, &tx.UserID, &tx.Type, &tx.TokenAmount, &tx.LocalCurrencyAmount,
		&method, &reference, &property, &tx.Status, &tx.CreatedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	tx.PaymentMethod = method.String
	tx.PaymentReference = reference.String
	tx.PropertyID = property.String
	if completedAt.Valid {
		t := completedAt.Time
		tx.CompletedAt = &t
	}
	return &tx, nil
}

// Create inserts a pending journal row. The status on the argument is ignored.
func (r *PostgresTransactionRepository) Create(ctx context.Context, tx *models.TokenTransaction) (id int64, err error) {
	if tx == nil {
		slog.Error("failed to create transaction", "method", "Create", "error", pkgerrors.ErrNilTransaction)
		return 0, pkgerrors.ErrNilTransaction
	}
	ctx, finish := observability.StartRepositoryCall(ctx, transactionTracer, "CreateTransaction",
		attribute.String("user_id", tx.UserID),
		attribute.String("type", string(tx.Type)),
		attribute.Int64("token_amount", tx.TokenAmount),
	)
	defer finish(&err)

	if !tx.Type.Valid() {
		err = pkgerrors.ErrInvalidTransactionType
		slog.Error("invalid transaction type", "method", "Create", "type", tx.Type, "error", err)
		return 0, err
	}
	if tx.TokenAmount <= 0 {
		err = pkgerrors.ErrInvalidAmount
		slog.Error("token amount must be positive", "method", "Create", "token_amount", tx.TokenAmount, "error", err)
		return 0, err
	}
	if tx.LocalCurrencyAmount.IsNegative() {
		err = pkgerrors.ErrInvalidCurrency
		slog.Error("currency amount must not be negative", "method", "Create", "amount", tx.LocalCurrencyAmount.String(), "error", err)
		return 0, err
	}

	query := `INSERT INTO token_transactions (user_id, type, token_amount, local_currency_amount, payment_method, payment_reference, property_id, status) VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending') RETURNING id, created_at`
	var createdAt time.Time
	err = r.db.QueryRowContext(ctx, query,
		tx.UserID,
		tx.Type,
		tx.TokenAmount,
		tx.LocalCurrencyAmount,
		nullString(tx.PaymentMethod),
		nullString(tx.PaymentReference),
		nullString(tx.PropertyID),
	).Scan(&id, &createdAt)
	if err != nil {
		if domainErr := classifyConstraintError(err); domainErr != nil {
			err = domainErr
			slog.Warn("transaction rejected by constraint", "method", "Create", "user_id", tx.UserID, "payment_method", tx.PaymentMethod, "error", err)
			return 0, err
		}
		slog.Error("failed to create transaction", "method", "Create", "user_id", tx.UserID, "type", tx.Type, "error", err)
		err = fmt.Errorf("failed to create transaction: %w", err)
		return 0, err
	}

	tx.ID = id
	tx.Status = models.StatusPending
	tx.CreatedAt = createdAt
	tx.CompletedAt = nil
	slog.Info("transaction created", "method", "Create", "id", id, "user_id", tx.UserID, "type", tx.Type, "token_amount", tx.TokenAmount)
	return id, nil
}

func (r *PostgresTransactionRepository) GetByID(ctx context.Context, id int64) (tx *models.TokenTransaction, err error) {
	ctx, finish := observability.StartRepositoryCall(ctx, transactionTracer, "GetTransactionByID", attribute.Int64("transaction_id", id))
	defer finish(&err)

	query := `SELECT ` + transactionColumns + ` FROM token_transactions WHERE id = $1`
	tx, err = scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrTransactionNotFound
		slog.Warn("transaction not found", "method", "GetByID", "transaction_id", id)
		return nil, err
	}
	if err != nil {
		slog.Error("failed to get transaction by id", "method", "GetByID", "transaction_id", id, "error", err)
		err = fmt.Errorf("failed to get transaction by id: %w", err)
		return nil, err
	}
	return tx, nil
}

func (r *PostgresTransactionRepository) GetByPaymentReference(ctx context.Context, method, reference string) (tx *models.TokenTransaction, err error) {
	ctx, finish := observability.StartRepositoryCall(ctx, transactionTracer, "GetTransactionByPaymentReference",
		attribute.String("payment_method", method))
	defer finish(&err)

	query := `SELECT ` + transactionColumns + ` FROM token_transactions WHERE payment_method = $1 AND payment_reference = $2 AND type = 'purchase' ORDER BY id DESC LIMIT 1`
	tx, err = scanTransaction(r.db.QueryRowContext(ctx, query, method, reference))
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrTransactionNotFound
		return nil, err
	}
	if err != nil {
		slog.Error("failed to get transaction by payment reference", "method", "GetByPaymentReference", "payment_method", method, "error", err)
		err = fmt.Errorf("failed to get transaction by payment reference: %w", err)
		return nil, err
	}
	return tx, nil
}

func (r *PostgresTransactionRepository) MarkCompleted(ctx context.Context, id int64) (*models.TokenTransaction, error) {
	return r.transition(ctx, id, models.StatusCompleted)
}

func (r *PostgresTransactionRepository) MarkFailed(ctx context.Context, id int64) (*models.TokenTransaction, error) {
	return r.transition(ctx, id, models.StatusFailed)
}

func (r *PostgresTransactionRepository) MarkCancelled(ctx context.Context, id int64) (*models.TokenTransaction, error) {
	return r.transition(ctx, id, models.StatusCancelled)
}

// transition moves a pending row into a terminal status with one conditional
// UPDATE, so two racing writers cannot both leave pending.
func (r *PostgresTransactionRepository) transition(ctx context.Context, id int64, to models.StatusType) (tx *models.TokenTransaction, err error) {
	ctx, finish := observability.StartRepositoryCall(ctx, transactionTracer, "TransitionTransaction",
		attribute.Int64("transaction_id", id),
		attribute.String("status", string(to)),
	)
	defer finish(&err)

	query := `UPDATE token_transactions SET status = $2, completed_at = CASE WHEN $2::text = 'completed' THEN NOW() ELSE NULL END WHERE id = $1 AND status = 'pending' RETURNING ` + transactionColumns
	tx, err = scanTransaction(r.db.QueryRowContext(ctx, query, id, to))
	if err == nil {
		slog.Info("transaction status changed", "method", "Transition", "transaction_id", id, "status", to)
		return tx, nil
	}
	if !stderrors.Is(err, sql.ErrNoRows) {
		slog.Error("failed to update transaction status", "method", "Transition", "transaction_id", id, "status", to, "error", err)
		err = fmt.Errorf("failed to update transaction status: %w", err)
		return nil, err
	}

	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		err = getErr
		return nil, err
	}
	err = fmt.Errorf("%w: transaction %d is %s, cannot become %s", pkgerrors.ErrInvalidTransition, id, current.Status, to)
	slog.Error("invalid transaction transition", "method", "Transition", "transaction_id", id, "from", current.Status, "to", to)
	return nil, err
}

// ListForUser pages through the user's journal newest first. Nothing is queried
// until the sequence is ranged over, and every range starts from the newest row.
func (r *PostgresTransactionRepository) ListForUser(ctx context.Context, userID string, limit int) iter.Seq2[*models.TokenTransaction, error] {
	return func(yield func(*models.TokenTransaction, error) bool) {
		remaining := limit
		cursor := int64(math.MaxInt64)
		for remaining > 0 {
			n := min(remaining, listPageSize)
			page, err := r.listPage(ctx, userID, cursor, n)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, tx := range page {
				if !yield(tx, nil) {
					return
				}
			}
			if len(page) < n {
				return
			}
			remaining -= len(page)
			cursor = page[len(page)-1].ID
		}
	}
}

func (r *PostgresTransactionRepository) listPage(ctx context.Context, userID string, beforeID int64, n int) (page []*models.TokenTransaction, err error) {
	ctx, finish := observability.StartRepositoryCall(ctx, transactionTracer, "ListTransactionsForUser",
		attribute.String("user_id", userID),
		attribute.Int64("before_id", beforeID),
	)
	defer finish(&err)

	query := `SELECT ` + transactionColumns + ` FROM token_transactions WHERE user_id = $1 AND id < $2 ORDER BY id DESC LIMIT $3`
	rows, err := r.db.QueryContext(ctx, query, userID, beforeID, n)
	if err != nil {
		slog.Error("failed to list transactions", "method", "ListForUser", "user_id", userID, "error", err)
		err = fmt.Errorf("failed to list transactions: %w", err)
		return nil, err
	}
	defer rows.Close()

	page, err = collectTransactions(rows)
	if err != nil {
		slog.Error("failed to scan transactions", "method", "ListForUser", "user_id", userID, "error", err)
		return nil, err
	}
	return page, nil
}

func (r *PostgresTransactionRepository) ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) (txs []*models.TokenTransaction, err error) {
	ctx, finish := observability.StartRepositoryCall(ctx, transactionTracer, "ListPendingTransactions")
	defer finish(&err)

	query := `SELECT ` + transactionColumns + ` FROM token_transactions WHERE status = 'pending' AND created_at < $1 ORDER BY created_at, id LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, cutoff, limit)
	if err != nil {
		slog.Error("failed to list pending transactions", "method", "ListPendingOlderThan", "error", err)
		err = fmt.Errorf("failed to list pending transactions: %w", err)
		return nil, err
	}
	defer rows.Close()

	txs, err = collectTransactions(rows)
	if err != nil {
		slog.Error("failed to scan pending transactions", "method", "ListPendingOlderThan", "error", err)
		return nil, err
	}
	slog.Info("pending transactions listed", "method", "ListPendingOlderThan", "cutoff", cutoff, "count", len(txs))
	return txs, nil
}

func collectTransactions(rows *sql.Rows) ([]*models.TokenTransaction, error) {
	var txs []*models.TokenTransaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txs, nil
}

// SumCompleted reconstructs lifetime counters from completed journal rows.
func (r *PostgresTransactionRepository) SumCompleted(ctx context.Context, userID string) (purchased, spent int64, err error) {
	ctx, finish := observability.StartRepositoryCall(ctx, transactionTracer, "SumCompletedTransactions", attribute.String("user_id", userID))
	defer finish(&err)

	query := `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'purchase' THEN token_amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'spend' THEN token_amount ELSE 0 END), 0)
		FROM token_transactions
		WHERE user_id = $1 AND status = 'completed'
	`
	err = r.db.QueryRowContext(ctx, query, userID).Scan(&purchased, &spent)
	if err != nil {
		slog.Error("failed to sum completed transactions", "method", "SumCompleted", "user_id", userID, "error", err)
		err = fmt.Errorf("failed to sum completed transactions: %w", err)
		return 0, 0, err
	}
	return purchased, spent, nil
}
