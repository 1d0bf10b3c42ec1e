package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	stderrors "errors"

	"github.com/honeynil/prop-token-ledger/internal/infrastructure/observability"
	"github.com/honeynil/prop-token-ledger/internal/models"
	pkgerrors "github.com/honeynil/prop-token-ledger/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Resolution string

const (
	ResolutionCompleted   Resolution = "completed"
	ResolutionFailed      Resolution = "failed"
	ResolutionCompensated Resolution = "compensated"
	// ResolutionSkipped means the row left pending before the reconciler got to it.
	ResolutionSkipped Resolution = "skipped"
)

func (s *ledgerService) ListOrphaned(ctx context.Context, cutoff time.Time, limit int) ([]*models.TokenTransaction, error) {
	return s.transactions.ListPendingOlderThan(ctx, cutoff, limit)
}

// ResolveOrphaned moves a stale pending row to a terminal status. Whether its
// mutation was applied is read from the row's own mutation marker, so other
// rows of the same user, finished or still running, do not affect the decision.
func (s *ledgerService) ResolveOrphaned(ctx context.Context, tx *models.TokenTransaction) (Resolution, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "ResolveOrphaned", trace.WithAttributes(
		attribute.Int64("transaction_id", tx.ID),
		attribute.String("type", string(tx.Type)),
	))
	defer span.End()

	var (
		res Resolution
		err error
	)
	switch tx.Type {
	case models.TypePurchase:
		res, err = s.resolvePurchase(ctx, tx)
	case models.TypeSpend:
		res, err = s.resolveSpend(ctx, tx)
	default:
		res, err = s.finish(ctx, tx, models.StatusFailed, ResolutionFailed)
	}
	if err != nil {
		span.RecordError(err)
		slog.Error("failed to resolve orphaned transaction", "transaction_id", tx.ID, "user_id", tx.UserID, "error", err)
		return res, err
	}
	slog.Info("orphaned transaction resolved", "transaction_id", tx.ID, "user_id", tx.UserID, "type", tx.Type, "resolution", res)
	return res, nil
}

func (s *ledgerService) resolvePurchase(ctx context.Context, tx *models.TokenTransaction) (Resolution, error) {
	m, err := s.accounts.GetMutation(ctx, tx.ID)
	switch {
	case stderrors.Is(err, pkgerrors.ErrMutationNotFound):
		return s.finish(ctx, tx, models.StatusFailed, ResolutionFailed)
	case err != nil:
		return "", err
	case m.Reversed():
		// Credit taken back after a failed completion.
		return s.finish(ctx, tx, models.StatusFailed, ResolutionFailed)
	}
	return s.finish(ctx, tx, models.StatusCompleted, ResolutionCompleted)
}

func (s *ledgerService) resolveSpend(ctx context.Context, tx *models.TokenTransaction) (Resolution, error) {
	inv, err := s.properties.GetInvestmentByTransaction(ctx, tx.ID)
	switch {
	case err == nil:
		slog.Debug("orphaned spend was allocated", "transaction_id", tx.ID, "investment_id", inv.ID)
		return s.finish(ctx, tx, models.StatusCompleted, ResolutionCompleted)
	case !stderrors.Is(err, pkgerrors.ErrInvestmentNotFound):
		return "", err
	}

	m, err := s.accounts.GetMutation(ctx, tx.ID)
	switch {
	case stderrors.Is(err, pkgerrors.ErrMutationNotFound):
		return s.finish(ctx, tx, models.StatusFailed, ResolutionFailed)
	case err != nil:
		return "", err
	case m.Reversed():
		return s.finish(ctx, tx, models.StatusFailed, ResolutionFailed)
	}

	// Debited but never allocated.
	if _, err := s.accounts.ReverseSpend(ctx, tx.UserID, tx.ID, tx.TokenAmount); err != nil {
		return "", fmt.Errorf("failed to credit back orphaned spend: %w", err)
	}
	observability.LedgerCompensations.Inc()
	s.invalidateBalance(ctx, tx.UserID)
	return s.finish(ctx, tx, models.StatusFailed, ResolutionCompensated)
}

func (s *ledgerService) finish(ctx context.Context, tx *models.TokenTransaction, status models.StatusType, res Resolution) (Resolution, error) {
	var err error
	switch status {
	case models.StatusCompleted:
		_, err = s.transactions.MarkCompleted(ctx, tx.ID)
	default:
		_, err = s.transactions.MarkFailed(ctx, tx.ID)
	}
	if stderrors.Is(err, pkgerrors.ErrInvalidTransition) {
		slog.Warn("orphaned transaction already resolved", "transaction_id", tx.ID, "error", err)
		return ResolutionSkipped, nil
	}
	if err != nil {
		return "", err
	}
	tx.Status = status
	s.publish(tx, s.currentBalance(ctx, tx.UserID, -1), 0)
	return res, nil
}
