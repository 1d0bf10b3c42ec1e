package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	pkgerrors "github.com/honeynil/prop-token-ledger/pkg/errors"
	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

// Migrate applies the ledger schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		slog.Error("failed to apply schema", "error", err)
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	slog.Info("schema applied")
	return nil
}

const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
)

// classifyConstraintError maps known constraint violations to domain errors and
// returns nil for anything else.
func classifyConstraintError(err error) error {
	var pqErr *pq.Error
	if !stderrors.As(err, &pqErr) {
		return nil
	}
	switch string(pqErr.Code) {
	case pqForeignKeyViolation:
		if strings.Contains(pqErr.Constraint, "payment_method") {
			return pkgerrors.ErrInvalidPaymentMethod
		}
	case pqUniqueViolation:
		if strings.Contains(pqErr.Constraint, "payment_reference") {
			return pkgerrors.ErrDuplicatePaymentReference
		}
		if strings.Contains(pqErr.Constraint, "properties_pkey") {
			return pkgerrors.ErrPropertyExists
		}
		if strings.Contains(pqErr.Constraint, "account_mutations_pkey") {
			return pkgerrors.ErrMutationApplied
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// rollback is deferred by every multi-statement method; it is a no-op after Commit.
func rollback(tx *sql.Tx, method string) {
	if err := tx.Rollback(); err != nil && !stderrors.Is(err, sql.ErrTxDone) {
		slog.Error("rollback failed", "method", method, "error", err)
	}
}
