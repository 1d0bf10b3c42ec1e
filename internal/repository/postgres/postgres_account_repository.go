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

const (
	accountTracer  = "account-repository"
	accountColumns = `user_id, balance, total_purchased, total_spent, last_purchase_at, created_at, updated_at`
)

type PostgresAccountRepository struct {
	db *sql.DB
}

func NewPostgresAccountRepository(db *sql.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

func scanAccount(row rowScanner) (*models.UserTokenAccount, error) {
	var (
		acc          models.UserTokenAccount
		lastPurchase sql.NullTime
	)
	err := row.Scan(&acc.UserID, &acc.Balance, &acc.TotalPurchased, &acc.TotalSpent, &lastPurchase, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lastPurchase.Valid {
		t := lastPurchase.Time
		acc.LastPurchaseAt = &t
	}
	return &acc, nil
}

// GetOrCreate is a single upsert, so concurrent first calls for one user still
// produce exactly one zeroed row.
func (r *PostgresAccountRepository) GetOrCreate(ctx context.Context, userID string) (acc *models.UserTokenAccount, err error) {
	ctx, finish := observability.StartRepositoryCall(ctx, accountTracer, "GetOrCreateAccount", attribute.String("user_id", userID))
	defer finish(&err)

	if userID == "" {
		err = pkgerrors.ErrEmptyUserID
		return nil, err
	}

	query := `
		INSERT INTO user_token_accounts (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING ` + accountColumns
	acc, err = scanAccount(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		slog.Error("failed to get or create account", "method", "GetOrCreate", "user_id", userID, "error", err)
		err = fmt.Errorf("failed to get or create account: %w", err)
		return nil, err
	}
	return acc, nil
}

func (r *PostgresAccountRepository) Get(ctx context.Context, userID string) (acc *models.UserTokenAccount, err error) {
	ctx, finish := observability.StartRepositoryCall(ctx, accountTracer, "GetAccount", attribute.String("user_id", userID))
	defer finish(&err)

	query := `SELECT ` + accountColumns + ` FROM user_token_accounts WHERE user_id = $1`
	acc, err = scanAccount(r.db.QueryRowContext(ctx, query, userID))
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrAccountNotFound
		return nil, err
	}
	if err != nil {
		slog.Error("failed to get account", "method", "Get", "user_id", userID, "error", err)
		err = fmt.Errorf("failed to get account: %w", err)
		return nil, err
	}
	return acc, nil
}

// ApplyPurchase credits the account and records the mutation marker for
// transactionID in the same statement.
func (r *PostgresAccountRepository) ApplyPurchase(ctx context.Context, userID string, transactionID, amount int64) (acc *models.UserTokenAccount, err error) {
	ctx, finish := observability.StartRepositoryCall(ctx, accountTracer, "ApplyPurchase",
		attribute.String("user_id", userID),
		attribute.Int64("transaction_id", transactionID),
		attribute.Int64("amount", amount),
	)
	defer finish(&err)

	if amount <= 0 {
		err = pkgerrors.ErrInvalidAmount
		return nil, err
	}

	query := `
		WITH credited AS (
			UPDATE user_token_accounts
			SET balance = balance + $2,
				total_purchased = total_purchased + $2,
				last_purchase_at = NOW(),
				updated_at = NOW()
			WHERE user_id = $1
			RETURNING ` + accountColumns + `
		), marked AS (
			INSERT INTO account_mutations (transaction_id, user_id, delta)
			SELECT $3, user_id, $2::BIGINT FROM credited
		)
		SELECT ` + accountColumns + ` FROM credited`
	acc, err = scanAccount(r.db.QueryRowContext(ctx, query, userID, amount, transactionID))
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrAccountNotFound
		slog.Warn("purchase on missing account", "method", "ApplyPurchase", "user_id", userID)
		return nil, err
	}
	if err != nil {
		if domainErr := classifyConstraintError(err); domainErr != nil {
			err = domainErr
			slog.Warn("purchase already applied", "method", "ApplyPurchase", "user_id", userID, "transaction_id", transactionID)
			return nil, err
		}
		slog.Error("failed to apply purchase", "method", "ApplyPurchase", "user_id", userID, "amount", amount, "error", err)
		err = fmt.Errorf("failed to apply purchase: %w", err)
		return nil, err
	}

	slog.Info("purchase applied", "method", "ApplyPurchase", "user_id", userID, "transaction_id", transactionID, "amount", amount, "balance", acc.Balance)
	return acc, nil
}

// ApplySpend debits only if the balance covers the amount; the check, the write
// and the mutation marker are one statement.
func (r *PostgresAccountRepository) ApplySpend(ctx context.Context, userID string, transactionID, amount int64) (acc *models.UserTokenAccount, err error) {
	ctx, finish := observability.StartRepositoryCall(ctx, accountTracer, "ApplySpend",
		attribute.String("user_id", userID),
		attribute.Int64("transaction_id", transactionID),
		attribute.Int64("amount", amount),
	)
	defer finish(&err)

	if amount <= 0 {
		err = pkgerrors.ErrInvalidAmount
		return nil, err
	}

	query := `
		WITH debited AS (
			UPDATE user_token_accounts
			SET balance = balance - $2,
				total_spent = total_spent + $2,
				updated_at = NOW()
			WHERE user_id = $1
			AND balance >= $2
			RETURNING ` + accountColumns + `
		), marked AS (
			INSERT INTO account_mutations (transaction_id, user_id, delta)
			SELECT $3, user_id, -($2::BIGINT) FROM debited
		)
		SELECT ` + accountColumns + ` FROM debited`
	acc, err = scanAccount(r.db.QueryRowContext(ctx, query, userID, amount, transactionID))
	if stderrors.Is(err, sql.ErrNoRows) {
		err = r.missOrShortfall(ctx, userID, pkgerrors.ErrInsufficientBalance)
		slog.Warn("spend rejected", "method", "ApplySpend", "user_id", userID, "amount", amount, "error", err)
		return nil, err
	}
	if err != nil {
		if domainErr := classifyConstraintError(err); domainErr != nil {
			err = domainErr
			slog.Warn("spend already applied", "method", "ApplySpend", "user_id", userID, "transaction_id", transactionID)
			return nil, err
		}
		slog.Error("failed to apply spend", "method", "ApplySpend", "user_id", userID, "amount", amount, "error", err)
		err = fmt.Errorf("failed to apply spend: %w", err)
		return nil, err
	}

	slog.Info("spend applied", "method", "ApplySpend", "user_id", userID, "transaction_id", transactionID, "amount", amount, "balance", acc.Balance)
	return acc, nil
}

// ReverseSpend undoes the debit recorded for transactionID, restoring balance and
// total_spent together. The marker row is locked, so a debit is reversed at most once.
func (r *PostgresAccountRepository) ReverseSpend(ctx context.Context, userID string, transactionID, amount int64) (acc *models.UserTokenAccount, err error) {
	ctx, finish := observability.StartRepositoryCall(ctx, accountTracer, "ReverseSpend",
		attribute.String("user_id", userID),
		attribute.Int64("transaction_id", transactionID),
		attribute.Int64("amount", amount),
	)
	defer finish(&err)

	if amount <= 0 {
		err = pkgerrors.ErrInvalidAmount
		return nil, err
	}

	query := `
		WITH marker AS (
			SELECT transaction_id FROM account_mutations
			WHERE transaction_id = $3
			AND user_id = $1
			AND delta = -($2::BIGINT)
			AND reversed_at IS NULL
			FOR UPDATE
		), credited AS (
			UPDATE user_token_accounts
			SET balance = balance + $2,
				total_spent = total_spent - $2,
				updated_at = NOW()
			FROM marker
			WHERE user_id = $1
			AND total_spent >= $2
			RETURNING ` + accountColumns + `
		), reversed AS (
			UPDATE account_mutations SET reversed_at = NOW()
			WHERE transaction_id = $3
			AND EXISTS (SELECT 1 FROM credited)
		)
		SELECT ` + accountColumns + ` FROM credited`
	acc, err = scanAccount(r.db.QueryRowContext(ctx, query, userID, amount, transactionID))
	if stderrors.Is(err, sql.ErrNoRows) {
		err = r.markerOrShortfall(ctx, userID, transactionID, -amount, fmt.Errorf("total spent below reversal amount %d", amount))
		slog.Error("spend reversal rejected", "method", "ReverseSpend", "user_id", userID, "transaction_id", transactionID, "amount", amount, "error", err)
		return nil, err
	}
	if err != nil {
		slog.Error("failed to reverse spend", "method", "ReverseSpend", "user_id", userID, "amount", amount, "error", err)
		err = fmt.Errorf("failed to reverse spend: %w", err)
		return nil, err
	}

	slog.Info("spend reversed", "method", "ReverseSpend", "user_id", userID, "transaction_id", transactionID, "amount", amount, "balance", acc.Balance)
	return acc, nil
}

// ReversePurchase takes back the credit recorded for transactionID when its journal
// row could not be completed. It fails with ErrInsufficientBalance once the credited
// tokens have been spent.
func (r *PostgresAccountRepository) ReversePurchase(ctx context.Context, userID string, transactionID, amount int64) (acc *models.UserTokenAccount, err error) {
	ctx, finish := observability.StartRepositoryCall(ctx, accountTracer, "ReversePurchase",
		attribute.String("user_id", userID),
		attribute.Int64("transaction_id", transactionID),
		attribute.Int64("amount", amount),
	)
	defer finish(&err)

	if amount <= 0 {
		err = pkgerrors.ErrInvalidAmount
		return nil, err
	}

	query := `
		WITH marker AS (
			SELECT transaction_id FROM account_mutations
			WHERE transaction_id = $3
			AND user_id = $1
			AND delta = $2
			AND reversed_at IS NULL
			FOR UPDATE
		), debited AS (
			UPDATE user_token_accounts
			SET balance = balance - $2,
				total_purchased = total_purchased - $2,
				updated_at = NOW()
			FROM marker
			WHERE user_id = $1
			AND balance >= $2
			AND total_purchased >= $2
			RETURNING ` + accountColumns + `
		), reversed AS (
			UPDATE account_mutations SET reversed_at = NOW()
			WHERE transaction_id = $3
			AND EXISTS (SELECT 1 FROM debited)
		)
		SELECT ` + accountColumns + ` FROM debited`
	acc, err = scanAccount(r.db.QueryRowContext(ctx, query, userID, amount, transactionID))
	if stderrors.Is(err, sql.ErrNoRows) {
		err = r.markerOrShortfall(ctx, userID, transactionID, amount, pkgerrors.ErrInsufficientBalance)
		slog.Error("purchase reversal rejected", "method", "ReversePurchase", "user_id", userID, "transaction_id", transactionID, "amount", amount, "error", err)
		return nil, err
	}
	if err != nil {
		slog.Error("failed to reverse purchase", "method", "ReversePurchase", "user_id", userID, "amount", amount, "error", err)
		err = fmt.Errorf("failed to reverse purchase: %w", err)
		return nil, err
	}

	slog.Info("purchase reversed", "method", "ReversePurchase", "user_id", userID, "transaction_id", transactionID, "amount", amount, "balance", acc.Balance)
	return acc, nil
}

func (r *PostgresAccountRepository) GetMutation(ctx context.Context, transactionID int64) (m *models.AccountMutation, err error) {
	ctx, finish := observability.StartRepositoryCall(ctx, accountTracer, "GetMutation", attribute.Int64("transaction_id", transactionID))
	defer finish(&err)

	var (
		out        models.AccountMutation
		reversedAt sql.NullTime
	)
	query := `
		SELECT transaction_id, user_id, delta, reversed_at, created_at
		FROM account_mutations
		WHERE transaction_id = $1`
	err = r.db.QueryRowContext(ctx, query, transactionID).Scan(&out.TransactionID, &out.UserID, &out.Delta, &reversedAt, &out.CreatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrMutationNotFound
		return nil, err
	}
	if err != nil {
		slog.Error("failed to get mutation", "method", "GetMutation", "transaction_id", transactionID, "error", err)
		err = fmt.Errorf("failed to get mutation: %w", err)
		return nil, err
	}
	if reversedAt.Valid {
		t := reversedAt.Time
		out.ReversedAt = &t
	}
	return &out, nil
}

// markerOrShortfall explains a reversal that matched no rows. With a live marker
// the account predicate failed and shortfall is returned.
func (r *PostgresAccountRepository) markerOrShortfall(ctx context.Context, userID string, transactionID, delta int64, shortfall error) error {
	var (
		owner    string
		recorded int64
		reversed bool
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, delta, reversed_at IS NOT NULL FROM account_mutations WHERE transaction_id = $1`,
		transactionID).Scan(&owner, &recorded, &reversed)
	switch {
	case stderrors.Is(err, sql.ErrNoRows):
		return pkgerrors.ErrMutationNotFound
	case err != nil:
		return fmt.Errorf("failed to check mutation: %w", err)
	case owner != userID || recorded != delta:
		return pkgerrors.ErrMutationNotFound
	case reversed:
		return pkgerrors.ErrMutationReversed
	}
	return shortfall
}

// missOrShortfall tells a missing account apart from a failed predicate after a
// conditional UPDATE matched no rows.
func (r *PostgresAccountRepository) missOrShortfall(ctx context.Context, userID string, shortfall error) error {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM user_token_accounts WHERE user_id = $1)`, userID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check account: %w", err)
	}
	if !exists {
		return pkgerrors.ErrAccountNotFound
	}
	return shortfall
}
