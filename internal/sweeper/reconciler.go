package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/honeynil/prop-token-ledger/internal/infrastructure/observability"
	"github.com/honeynil/prop-token-ledger/internal/models"
	service "github.com/honeynil/prop-token-ledger/internal/services"
)

// Resolver is the part of the ledger service the reconciler drives.
type Resolver interface {
	ListOrphaned(ctx context.Context, cutoff time.Time, limit int) ([]*models.TokenTransaction, error)
	ResolveOrphaned(ctx context.Context, tx *models.TokenTransaction) (service.Resolution, error)
}

type Config struct {
	Interval       time.Duration // time between passes
	PendingTimeout time.Duration // rows younger than this may still be in flight
	BatchSize      int
	Workers        int
	MaxRetries     uint64 // per row
}

// Summary counts resolutions of one pass.
type Summary struct {
	Scanned  int                        `json:"scanned"`
	Resolved map[service.Resolution]int `json:"resolved"`
	Errors   int                        `json:"errors"`
}

// Reconciler periodically closes pending journal rows whose saga never finished.
type Reconciler struct {
	config   Config
	resolver Resolver
	now      func() time.Time

	newBackOff func() backoff.BackOff

	pass      sync.Mutex
	running   atomic.Bool
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func NewReconciler(config Config, resolver Resolver) *Reconciler {
	if config.Interval <= 0 {
		config.Interval = time.Minute
	}
	if config.PendingTimeout <= 0 {
		config.PendingTimeout = 15 * time.Minute
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.Workers <= 0 {
		config.Workers = 4
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	return &Reconciler{
		config:    config,
		resolver:  resolver,
		now:       time.Now,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
}

// Start runs passes until ctx is done or Stop is called. It blocks.
func (r *Reconciler) Start(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return fmt.Errorf("reconciler already running")
	}
	defer close(r.stoppedCh)

	slog.Info("reconciler started",
		"interval", r.config.Interval,
		"pending_timeout", r.config.PendingTimeout,
		"batch_size", r.config.BatchSize,
		"workers", r.config.Workers)

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("reconciler stopping", "cause", ctx.Err())
			return nil
		case <-r.stopCh:
			slog.Info("reconciler stop requested")
			return nil
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil {
				slog.Error("reconcile pass failed", "error", err)
			}
		}
	}
}

func (r *Reconciler) Stop(ctx context.Context) error {
	if !r.running.CompareAndSwap(true, false) {
		return nil
	}
	close(r.stopCh)
	select {
	case <-r.stoppedCh:
		slog.Info("reconciler stopped")
		return nil
	case <-ctx.Done():
		slog.Warn("reconciler stop interrupted", "error", ctx.Err())
		return ctx.Err()
	}
}

// RunOnce resolves one batch of orphaned rows. Users are spread across the worker
// pool; the rows of a single user run in order on one worker.
func (r *Reconciler) RunOnce(ctx context.Context) (*Summary, error) {
	r.pass.Lock()
	defer r.pass.Unlock()

	start := time.Now()
	cutoff := r.now().Add(-r.config.PendingTimeout)
	orphans, err := r.resolver.ListOrphaned(ctx, cutoff, r.config.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list orphaned transactions: %w", err)
	}

	summary := &Summary{Scanned: len(orphans), Resolved: make(map[service.Resolution]int)}
	if len(orphans) == 0 {
		slog.Debug("no orphaned transactions", "cutoff", cutoff)
		return summary, nil
	}

	var (
		mu      sync.Mutex
		byUser  = make(map[string][]*models.TokenTransaction)
		ordered []string
	)
	// ListOrphaned is oldest first, so each user's slice is too.
	for _, tx := range orphans {
		if _, ok := byUser[tx.UserID]; !ok {
			ordered = append(ordered, tx.UserID)
		}
		byUser[tx.UserID] = append(byUser[tx.UserID], tx)
	}

	pool := pond.NewPool(r.config.Workers, pond.WithQueueSize(len(ordered)), pond.WithContext(ctx))
	for _, userID := range ordered {
		txs := byUser[userID]
		pool.Submit(func() {
			for _, tx := range txs {
				res, err := r.resolve(ctx, tx)
				mu.Lock()
				if err != nil {
					summary.Errors++
				} else {
					summary.Resolved[res]++
				}
				mu.Unlock()
				if err != nil {
					// Later rows of this user depend on this one's outcome.
					slog.Warn("skipping remaining orphans of user", "user_id", userID, "transaction_id", tx.ID)
					return
				}
			}
		})
	}
	pool.StopAndWait()

	slog.Info("reconcile pass completed",
		"duration", time.Since(start),
		"scanned", summary.Scanned,
		"errors", summary.Errors,
		"resolved", summary.Resolved)
	return summary, nil
}

func (r *Reconciler) resolve(ctx context.Context, tx *models.TokenTransaction) (service.Resolution, error) {
	var res service.Resolution
	operation := func() error {
		var err error
		res, err = r.resolver.ResolveOrphaned(ctx, tx)
		return err
	}
	b := backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), r.config.MaxRetries), ctx)
	notify := func(err error, next time.Duration) {
		slog.Warn("resolve failed, retrying", "transaction_id", tx.ID, "error", err, "next_retry_in", next)
	}
	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		observability.LedgerReconciled.WithLabelValues("error").Inc()
		slog.Error("failed to resolve orphaned transaction", "transaction_id", tx.ID, "user_id", tx.UserID, "error", err)
		return "", err
	}
	observability.LedgerReconciled.WithLabelValues(string(res)).Inc()
	return res, nil
}
