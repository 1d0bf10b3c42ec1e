package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	stderrors "errors"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/honeynil/prop-token-ledger/internal/infrastructure/kafka"
	"github.com/honeynil/prop-token-ledger/internal/infrastructure/observability"
	"github.com/honeynil/prop-token-ledger/internal/infrastructure/redis"
	"github.com/honeynil/prop-token-ledger/internal/models"
	"github.com/honeynil/prop-token-ledger/internal/repository"
	pkgerrors "github.com/honeynil/prop-token-ledger/pkg/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

//go:generate mockgen -source=ledger_service.go -destination=mocks/ledger_service.go -package=mocks

type LedgerService interface {
	PurchaseTokens(ctx context.Context, req PurchaseRequest) (*PurchaseResult, error)
	InvestTokens(ctx context.Context, req InvestRequest) (*InvestResult, error)
	GetAccount(ctx context.Context, userID string) (*models.UserTokenAccount, error)
	GetBalance(ctx context.Context, userID string) (int64, error)
	ListTransactions(ctx context.Context, userID string, limit int) ([]*models.TokenTransaction, error)
	ListPaymentMethods(ctx context.Context) ([]*models.PaymentMethod, error)
	AuditAccount(ctx context.Context, userID string) (*models.AccountAudit, error)
	AuditProperty(ctx context.Context, propertyID string) (*models.PropertyAudit, error)
	ListOrphaned(ctx context.Context, cutoff time.Time, limit int) ([]*models.TokenTransaction, error)
	ResolveOrphaned(ctx context.Context, tx *models.TokenTransaction) (Resolution, error)
}

type PurchaseRequest struct {
	UserID           string
	TokenAmount      int64
	PaymentMethod    string
	PaymentReference string
}

type PurchaseResult struct {
	TransactionID int64 `json:"transaction_id,omitempty"`
	NewBalance    int64 `json:"new_balance"`
	Replayed      bool  `json:"replayed,omitempty"`
}

type InvestRequest struct {
	UserID      string
	PropertyID  string
	TokenAmount int64
}

type InvestResult struct {
	TransactionID int64 `json:"transaction_id,omitempty"`
	InvestmentID  int64 `json:"investment_id,omitempty"`
	NewBalance    int64 `json:"new_balance"`
}

type Options struct {
	// TokenPrice is the local-currency value of one token, used to derive the
	// currency amount a purchase is validated against.
	TokenPrice       decimal.Decimal
	OperationTimeout time.Duration
	CacheTTL         time.Duration
	EventTopic       string
}

func (o Options) withDefaults() Options {
	if !o.TokenPrice.IsPositive() {
		o.TokenPrice = decimal.NewFromInt(1000)
	}
	if o.OperationTimeout <= 0 {
		o.OperationTimeout = 10 * time.Second
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = 5 * time.Minute
	}
	if o.EventTopic == "" {
		o.EventTopic = "ledger-transactions"
	}
	return o
}

const tracerName = "ledger-service"

type ledgerService struct {
	accounts       repository.AccountRepository
	transactions   repository.TransactionRepository
	properties     repository.PropertyRepository
	paymentMethods repository.PaymentMethodRepository
	redisClient    redis.RedisClient
	producer       kafka.KafkaProducer
	opts           Options

	publishing sync.WaitGroup
	newBackOff func() backoff.BackOff
}

func NewLedgerService(
	accounts repository.AccountRepository,
	transactions repository.TransactionRepository,
	properties repository.PropertyRepository,
	paymentMethods repository.PaymentMethodRepository,
	redisClient redis.RedisClient,
	producer kafka.KafkaProducer,
	opts Options,
) *ledgerService {
	return &ledgerService{
		accounts:       accounts,
		transactions:   transactions,
		properties:     properties,
		paymentMethods: paymentMethods,
		redisClient:    redisClient,
		producer:       producer,
		opts:           opts.withDefaults(),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxInterval = 5 * time.Second
			b.MaxElapsedTime = 30 * time.Second
			return b
		},
	}
}

// PurchaseTokens credits tokens bought through a catalog payment method. The
// payment reference is trusted as supplied; there is no gateway confirmation.
func (s *ledgerService) PurchaseTokens(ctx context.Context, req PurchaseRequest) (res *PurchaseResult, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.OperationTimeout)
	defer cancel()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "PurchaseTokens", trace.WithAttributes(
		attribute.String("user_id", req.UserID),
		attribute.Int64("token_amount", req.TokenAmount),
		attribute.String("payment_method", req.PaymentMethod),
	))
	defer span.End()
	defer func() { s.recordOutcome(span, "purchase", err) }()

	currency, err := s.validatePurchase(ctx, req)
	if err != nil {
		slog.Warn("purchase rejected", "user_id", req.UserID, "token_amount", req.TokenAmount, "payment_method", req.PaymentMethod, "error", err)
		return nil, err
	}

	acc, err := s.accounts.GetOrCreate(ctx, req.UserID)
	if err != nil {
		slog.Error("failed to load account", "user_id", req.UserID, "error", err)
		return nil, err
	}

	tx := &models.TokenTransaction{
		UserID:              req.UserID,
		Type:                models.TypePurchase,
		TokenAmount:         req.TokenAmount,
		LocalCurrencyAmount: currency,
		PaymentMethod:       req.PaymentMethod,
		PaymentReference:    req.PaymentReference,
	}
	txID, err := s.transactions.Create(ctx, tx)
	if stderrors.Is(err, pkgerrors.ErrDuplicatePaymentReference) {
		return s.replayPurchase(ctx, req, acc)
	}
	if err != nil {
		slog.Error("failed to create purchase transaction", "user_id", req.UserID, "error", err)
		return &PurchaseResult{NewBalance: acc.Balance}, err
	}

	if ctx.Err() != nil {
		s.cancelPending(ctx, tx)
		return &PurchaseResult{TransactionID: txID, NewBalance: acc.Balance}, ctx.Err()
	}

	// From here on the row must reach a terminal status even if the caller is gone.
	fctx, fcancel := s.detached(ctx)
	defer fcancel()

	updated, err := s.accounts.ApplyPurchase(fctx, req.UserID, txID, req.TokenAmount)
	if err != nil {
		slog.Error("failed to apply purchase", "user_id", req.UserID, "transaction_id", txID, "error", err)
		s.markFailed(fctx, tx)
		return &PurchaseResult{TransactionID: txID, NewBalance: acc.Balance}, err
	}
	s.invalidateBalance(fctx, req.UserID)

	if _, err = s.transactions.MarkCompleted(fctx, txID); err != nil {
		s.noteTransitionError(err, txID)
		slog.Error("failed to complete purchase, reversing credit", "user_id", req.UserID, "transaction_id", txID, "error", err)
		reverted, revErr := s.accounts.ReversePurchase(fctx, req.UserID, txID, req.TokenAmount)
		if revErr != nil {
			// The credit and its marker stand; the reconciler will complete the row.
			slog.Error("failed to reverse purchase, left for reconciliation", "user_id", req.UserID, "transaction_id", txID, "error", revErr)
			return &PurchaseResult{TransactionID: txID, NewBalance: updated.Balance}, err
		}
		s.markFailed(fctx, tx)
		return &PurchaseResult{TransactionID: txID, NewBalance: reverted.Balance}, err
	}

	tx.Status = models.StatusCompleted
	s.publish(tx, updated.Balance, 0)
	slog.Info("tokens purchased", "user_id", req.UserID, "transaction_id", txID, "token_amount", req.TokenAmount, "balance", updated.Balance)
	return &PurchaseResult{TransactionID: txID, NewBalance: updated.Balance}, nil
}

func (s *ledgerService) validatePurchase(ctx context.Context, req PurchaseRequest) (decimal.Decimal, error) {
	if req.UserID == "" {
		return decimal.Zero, pkgerrors.ErrEmptyUserID
	}
	if req.TokenAmount <= 0 {
		return decimal.Zero, pkgerrors.ErrInvalidAmount
	}
	method, err := s.lookupPaymentMethod(ctx, req.PaymentMethod)
	if stderrors.Is(err, pkgerrors.ErrPaymentMethodNotFound) {
		return decimal.Zero, fmt.Errorf("%w: %q", pkgerrors.ErrInvalidPaymentMethod, req.PaymentMethod)
	}
	if err != nil {
		return decimal.Zero, err
	}
	currency := s.opts.TokenPrice.Mul(decimal.NewFromInt(req.TokenAmount))
	if !method.InBounds(currency) {
		return decimal.Zero, fmt.Errorf("%w: %s not in [%s, %s]", pkgerrors.ErrAmountOutOfBounds,
			currency.String(), method.MinAmount.String(), method.MaxAmount.String())
	}
	return currency, nil
}

// replayPurchase answers a retried acknowledgement of a payment reference that is
// already journaled, without crediting twice.
func (s *ledgerService) replayPurchase(ctx context.Context, req PurchaseRequest, acc *models.UserTokenAccount) (*PurchaseResult, error) {
	existing, err := s.transactions.GetByPaymentReference(ctx, req.PaymentMethod, req.PaymentReference)
	if err != nil {
		slog.Error("failed to load transaction for payment reference", "user_id", req.UserID, "payment_method", req.PaymentMethod, "error", err)
		return &PurchaseResult{NewBalance: acc.Balance}, err
	}
	if existing.UserID != req.UserID || existing.TokenAmount != req.TokenAmount {
		slog.Warn("payment reference reused with different request", "user_id", req.UserID, "transaction_id", existing.ID)
		return &PurchaseResult{NewBalance: acc.Balance}, pkgerrors.ErrDuplicatePaymentReference
	}
	if existing.Status != models.StatusCompleted {
		return &PurchaseResult{TransactionID: existing.ID, NewBalance: acc.Balance}, pkgerrors.ErrRequestInProgress
	}

	current, err := s.accounts.Get(ctx, req.UserID)
	if err != nil {
		return &PurchaseResult{TransactionID: existing.ID, NewBalance: acc.Balance}, err
	}
	slog.Info("purchase replayed", "user_id", req.UserID, "transaction_id", existing.ID)
	return &PurchaseResult{TransactionID: existing.ID, NewBalance: current.Balance, Replayed: true}, nil
}

// InvestTokens spends tokens on a property's inventory. A debit whose allocation
// fails is credited back before the row is marked failed.
func (s *ledgerService) InvestTokens(ctx context.Context, req InvestRequest) (res *InvestResult, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.OperationTimeout)
	defer cancel()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "InvestTokens", trace.WithAttributes(
		attribute.String("user_id", req.UserID),
		attribute.String("property_id", req.PropertyID),
		attribute.Int64("token_amount", req.TokenAmount),
	))
	defer span.End()
	defer func() { s.recordOutcome(span, "invest", err) }()

	switch {
	case req.UserID == "":
		return nil, pkgerrors.ErrEmptyUserID
	case req.PropertyID == "":
		return nil, pkgerrors.ErrEmptyPropertyID
	case req.TokenAmount <= 0:
		return nil, pkgerrors.ErrInvalidAmount
	}

	if _, err = s.properties.GetInventory(ctx, req.PropertyID); err != nil {
		slog.Warn("investment target unavailable", "user_id", req.UserID, "property_id", req.PropertyID, "error", err)
		return nil, err
	}

	// Accounts are created by purchases only. Without one the spend below is
	// journaled and rejected as insufficient balance.
	acc, err := s.accounts.Get(ctx, req.UserID)
	if stderrors.Is(err, pkgerrors.ErrAccountNotFound) {
		acc, err = &models.UserTokenAccount{UserID: req.UserID}, nil
	}
	if err != nil {
		slog.Error("failed to load account", "user_id", req.UserID, "error", err)
		return nil, err
	}

	totalAmount := s.opts.TokenPrice.Mul(decimal.NewFromInt(req.TokenAmount))
	tx := &models.TokenTransaction{
		UserID:              req.UserID,
		Type:                models.TypeSpend,
		TokenAmount:         req.TokenAmount,
		LocalCurrencyAmount: totalAmount,
		PropertyID:          req.PropertyID,
	}
	txID, err := s.transactions.Create(ctx, tx)
	if err != nil {
		slog.Error("failed to create spend transaction", "user_id", req.UserID, "error", err)
		return &InvestResult{NewBalance: acc.Balance}, err
	}

	if ctx.Err() != nil {
		s.cancelPending(ctx, tx)
		return &InvestResult{TransactionID: txID, NewBalance: acc.Balance}, ctx.Err()
	}

	fctx, fcancel := s.detached(ctx)
	defer fcancel()

	debited, err := s.accounts.ApplySpend(fctx, req.UserID, txID, req.TokenAmount)
	if stderrors.Is(err, pkgerrors.ErrAccountNotFound) {
		err = fmt.Errorf("%w: no account for %s", pkgerrors.ErrInsufficientBalance, req.UserID)
	}
	if err != nil {
		slog.Warn("spend rejected", "user_id", req.UserID, "transaction_id", txID, "token_amount", req.TokenAmount, "error", err)
		s.markFailed(fctx, tx)
		return &InvestResult{TransactionID: txID, NewBalance: s.currentBalance(fctx, req.UserID, acc.Balance)}, err
	}
	s.invalidateBalance(fctx, req.UserID)

	investment, err := s.properties.ReserveAndAllocate(fctx, req.PropertyID, req.UserID, txID, req.TokenAmount, totalAmount)
	if err != nil && !allocationRejected(err) {
		// The allocation may have committed anyway; its investment row decides.
		found, lookupErr := s.properties.GetInvestmentByTransaction(fctx, txID)
		switch {
		case lookupErr == nil:
			slog.Warn("allocation reported an error but committed", "user_id", req.UserID, "transaction_id", txID, "investment_id", found.ID, "error", err)
			investment, err = found, nil
		case !stderrors.Is(lookupErr, pkgerrors.ErrInvestmentNotFound):
			slog.Error("allocation outcome unknown, left for reconciliation", "user_id", req.UserID, "transaction_id", txID, "error", err, "lookup_error", lookupErr)
			return &InvestResult{TransactionID: txID, NewBalance: debited.Balance}, err
		}
	}
	if err != nil {
		slog.Warn("allocation failed, compensating spend", "user_id", req.UserID, "property_id", req.PropertyID, "transaction_id", txID, "error", err)
		credited, compErr := s.accounts.ReverseSpend(fctx, req.UserID, txID, req.TokenAmount)
		if compErr != nil {
			// Row stays pending so the reconciler retries the credit.
			slog.Error("failed to compensate spend, left for reconciliation", "user_id", req.UserID, "transaction_id", txID, "error", compErr)
			return &InvestResult{TransactionID: txID, NewBalance: debited.Balance}, err
		}
		observability.LedgerCompensations.Inc()
		s.markFailed(fctx, tx)
		return &InvestResult{TransactionID: txID, NewBalance: credited.Balance}, err
	}

	if _, cerr := s.transactions.MarkCompleted(fctx, txID); cerr != nil {
		// The allocation is committed and references this row, so the reconciler
		// will complete it. The investment itself has succeeded.
		s.noteTransitionError(cerr, txID)
		slog.Error("failed to complete spend, left for reconciliation", "user_id", req.UserID, "transaction_id", txID, "investment_id", investment.ID, "error", cerr)
	} else {
		tx.Status = models.StatusCompleted
		s.publish(tx, debited.Balance, investment.ID)
	}

	slog.Info("tokens invested", "user_id", req.UserID, "property_id", req.PropertyID, "transaction_id", txID, "investment_id", investment.ID, "token_amount", req.TokenAmount, "balance", debited.Balance)
	return &InvestResult{TransactionID: txID, InvestmentID: investment.ID, NewBalance: debited.Balance}, nil
}

// allocationRejected reports errors that guarantee nothing was allocated.
func allocationRejected(err error) bool {
	return stderrors.Is(err, pkgerrors.ErrInsufficientInventory) || stderrors.Is(err, pkgerrors.ErrPropertyNotFound)
}

func (s *ledgerService) GetAccount(ctx context.Context, userID string) (*models.UserTokenAccount, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "GetAccount")
	defer span.End()

	acc, err := s.accounts.Get(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return acc, nil
}

// GetBalance serves from the cache when possible. Users without an account have a
// zero balance.
func (s *ledgerService) GetBalance(ctx context.Context, userID string) (int64, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "GetBalance")
	defer span.End()

	key := redis.BalanceKey(userID)
	if cached, err := s.redisClient.Get(ctx, key); err == nil {
		if balance, perr := strconv.ParseInt(cached, 10, 64); perr == nil {
			return balance, nil
		}
		slog.Error("failed to parse cached balance", "user_id", userID, "value", cached)
	} else if !stderrors.Is(err, redis.ErrKeyNotFound) {
		slog.Error("failed to read cached balance", "user_id", userID, "error", err)
	}

	acc, err := s.accounts.Get(ctx, userID)
	if stderrors.Is(err, pkgerrors.ErrAccountNotFound) {
		return 0, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get balance")
		slog.Error("failed to get balance", "user_id", userID, "error", err)
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}

	if err := s.redisClient.Set(ctx, key, strconv.FormatInt(acc.Balance, 10), s.opts.CacheTTL); err != nil {
		slog.Error("failed to cache balance", "user_id", userID, "error", err)
	}
	return acc.Balance, nil
}

func (s *ledgerService) ListTransactions(ctx context.Context, userID string, limit int) ([]*models.TokenTransaction, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "ListTransactions")
	defer span.End()

	txs := make([]*models.TokenTransaction, 0, min(max(limit, 0), 64))
	for tx, err := range s.transactions.ListForUser(ctx, userID, limit) {
		if err != nil {
			span.RecordError(err)
			slog.Error("failed to list transactions", "user_id", userID, "error", err)
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func (s *ledgerService) ListPaymentMethods(ctx context.Context) ([]*models.PaymentMethod, error) {
	return s.paymentMethods.List(ctx)
}

// lookupPaymentMethod reads through the Redis cache; cache failures fall back to
// the catalog.
func (s *ledgerService) lookupPaymentMethod(ctx context.Context, name string) (*models.PaymentMethod, error) {
	if name == "" {
		return nil, pkgerrors.ErrPaymentMethodNotFound
	}
	key := redis.PaymentMethodKey(name)
	if cached, err := s.redisClient.Get(ctx, key); err == nil {
		var method models.PaymentMethod
		if jerr := json.Unmarshal([]byte(cached), &method); jerr == nil {
			return &method, nil
		}
		slog.Error("failed to unmarshal cached payment method", "name", name)
	}

	method, err := s.paymentMethods.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(method); err == nil {
		if err := s.redisClient.Set(ctx, key, string(payload), s.opts.CacheTTL); err != nil {
			slog.Error("failed to cache payment method", "name", name, "error", err)
		}
	}
	return method, nil
}

// AuditAccount compares the stored counters with the completed journal rows.
// Operations still in flight show up as transient drift.
func (s *ledgerService) AuditAccount(ctx context.Context, userID string) (*models.AccountAudit, error) {
	acc, err := s.accounts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	purchased, spent, err := s.transactions.SumCompleted(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.AccountAudit{
		UserID:           userID,
		Account:          acc,
		JournalPurchased: purchased,
		JournalSpent:     spent,
		Consistent:       acc.Consistent() && acc.TotalPurchased == purchased && acc.TotalSpent == spent,
	}, nil
}

func (s *ledgerService) AuditProperty(ctx context.Context, propertyID string) (*models.PropertyAudit, error) {
	inv, err := s.properties.GetInventory(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	active, err := s.properties.ActiveInvestedTokens(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	return &models.PropertyAudit{
		PropertyID:           propertyID,
		TotalTokens:          inv.TotalTokens,
		AvailableTokens:      inv.AvailableTokens,
		ActiveInvestedTokens: active,
		Consistent: inv.AvailableTokens >= 0 &&
			inv.AvailableTokens <= inv.TotalTokens &&
			inv.Allocated() == active,
	}, nil
}

// Drain waits for in-flight event publishes.
func (s *ledgerService) Drain() {
	s.publishing.Wait()
}

func (s *ledgerService) detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.opts.OperationTimeout)
}

func (s *ledgerService) markFailed(ctx context.Context, tx *models.TokenTransaction) {
	if _, err := s.transactions.MarkFailed(ctx, tx.ID); err != nil {
		s.noteTransitionError(err, tx.ID)
		slog.Error("failed to mark transaction failed", "transaction_id", tx.ID, "error", err)
		return
	}
	tx.Status = models.StatusFailed
	s.publish(tx, -1, 0)
}

// cancelPending closes a row whose caller went away before any mutation ran.
func (s *ledgerService) cancelPending(ctx context.Context, tx *models.TokenTransaction) {
	fctx, cancel := s.detached(ctx)
	defer cancel()
	if _, err := s.transactions.MarkCancelled(fctx, tx.ID); err != nil {
		s.noteTransitionError(err, tx.ID)
		slog.Error("failed to cancel transaction", "transaction_id", tx.ID, "error", err)
		return
	}
	slog.Warn("transaction cancelled before mutation", "transaction_id", tx.ID, "user_id", tx.UserID, "cause", ctx.Err())
	tx.Status = models.StatusCancelled
}

func (s *ledgerService) noteTransitionError(err error, txID int64) {
	if stderrors.Is(err, pkgerrors.ErrInvalidTransition) {
		observability.LedgerInvalidTransitions.Inc()
		slog.Error("journal state machine violation", "transaction_id", txID, "error", err)
	}
}

func (s *ledgerService) currentBalance(ctx context.Context, userID string, fallback int64) int64 {
	acc, err := s.accounts.Get(ctx, userID)
	if err != nil {
		return fallback
	}
	return acc.Balance
}

func (s *ledgerService) invalidateBalance(ctx context.Context, userID string) {
	if err := s.redisClient.Del(ctx, redis.BalanceKey(userID)); err != nil {
		slog.Error("failed to invalidate cached balance", "user_id", userID, "error", err)
	}
}

// publish emits a LedgerEvent in the background. A negative balance means the
// balance is unknown to the caller and is left out of the event.
func (s *ledgerService) publish(tx *models.TokenTransaction, balance, investmentID int64) {
	event := models.LedgerEvent{
		EventID:       uuid.NewString(),
		TransactionID: tx.ID,
		UserID:        tx.UserID,
		Type:          tx.Type,
		Status:        tx.Status,
		TokenAmount:   tx.TokenAmount,
		PropertyID:    tx.PropertyID,
		InvestmentID:  investmentID,
		Balance:       max(balance, 0),
		OccurredAt:    time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal ledger event", "transaction_id", tx.ID, "error", err)
		return
	}

	s.publishing.Add(1)
	go func() {
		defer s.publishing.Done()
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		send := func() error {
			return s.producer.Send(ctx, s.opts.EventTopic, event.UserID, payload)
		}
		if err := backoff.Retry(send, backoff.WithContext(s.newBackOff(), ctx)); err != nil {
			slog.Error("failed to publish ledger event after retries", "event_id", event.EventID, "transaction_id", event.TransactionID, "error", err)
		}
	}()
}

func (s *ledgerService) recordOutcome(span trace.Span, operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = pkgerrors.Code(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	observability.LedgerOperations.WithLabelValues(operation, outcome).Inc()
}
