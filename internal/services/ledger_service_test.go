package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang/mock/gomock"
	"github.com/honeynil/prop-token-ledger/internal/infrastructure/kafka"
	kafkamocks "github.com/honeynil/prop-token-ledger/internal/infrastructure/kafka/mocks"
	"github.com/honeynil/prop-token-ledger/internal/infrastructure/observability"
	"github.com/honeynil/prop-token-ledger/internal/infrastructure/redis"
	redismocks "github.com/honeynil/prop-token-ledger/internal/infrastructure/redis/mocks"
	"github.com/honeynil/prop-token-ledger/internal/models"
	"github.com/honeynil/prop-token-ledger/internal/repository/memory"
	repositorymocks "github.com/honeynil/prop-token-ledger/internal/repository/mocks"
	pkgerrors "github.com/honeynil/prop-token-ledger/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryLedger struct {
	svc          *ledgerService
	accounts     *memory.AccountRepository
	transactions *memory.TransactionRepository
	properties   *memory.PropertyRepository
	refs         int
}

func newMemoryLedger(t *testing.T) *memoryLedger {
	t.Helper()
	l := &memoryLedger{
		accounts:     memory.NewAccountRepository(),
		transactions: memory.NewTransactionRepository(),
		properties:   memory.NewPropertyRepository(),
	}
	l.svc = NewLedgerService(l.accounts, l.transactions, l.properties,
		memory.NewPaymentMethodRepository(memory.DefaultPaymentMethods()...),
		redis.NoopClient{}, kafka.NoopProducer{}, Options{})
	t.Cleanup(l.svc.Drain)
	return l
}

func (l *memoryLedger) fund(t *testing.T, userID string, tokens int64) {
	t.Helper()
	l.refs++
	_, err := l.svc.PurchaseTokens(context.Background(), PurchaseRequest{
		UserID:           userID,
		TokenAmount:      tokens,
		PaymentMethod:    "bank_transfer",
		PaymentReference: fmt.Sprintf("fund-%d", l.refs),
	})
	require.NoError(t, err)
}

func (l *memoryLedger) property(t *testing.T, propertyID string, total int64) {
	t.Helper()
	_, err := l.properties.Create(context.Background(), propertyID, total)
	require.NoError(t, err)
}

func (l *memoryLedger) journal(t *testing.T, userID string) []*models.TokenTransaction {
	t.Helper()
	txs, err := l.svc.ListTransactions(context.Background(), userID, 100)
	require.NoError(t, err)
	return txs
}

func (l *memoryLedger) requireConsistent(t *testing.T, userID string) *models.UserTokenAccount {
	t.Helper()
	audit, err := l.svc.AuditAccount(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, audit.Consistent, "account %s drifted: %+v", userID, audit)
	return audit.Account
}

func TestLedgerService_PurchaseTokens(t *testing.T) {
	ctx := context.Background()

	t.Run("new user buys tokens", func(t *testing.T) {
		l := newMemoryLedger(t)

		res, err := l.svc.PurchaseTokens(ctx, PurchaseRequest{UserID: "alice", TokenAmount: 10, PaymentMethod: "bank_transfer", PaymentReference: "ref-1"})
		require.NoError(t, err)
		assert.Equal(t, int64(10), res.NewBalance)
		assert.False(t, res.Replayed)

		acc := l.requireConsistent(t, "alice")
		assert.Equal(t, int64(10), acc.TotalPurchased)
		assert.NotNil(t, acc.LastPurchaseAt)

		txs := l.journal(t, "alice")
		require.Len(t, txs, 1)
		assert.Equal(t, res.TransactionID, txs[0].ID)
		assert.Equal(t, models.StatusCompleted, txs[0].Status)
		assert.True(t, decimal.NewFromInt(10000).Equal(txs[0].LocalCurrencyAmount))
	})

	t.Run("invalid requests never reach the journal", func(t *testing.T) {
		l := newMemoryLedger(t)

		cases := []struct {
			name string
			req  PurchaseRequest
			want error
		}{
			{"zero amount", PurchaseRequest{UserID: "alice", TokenAmount: 0, PaymentMethod: "card"}, pkgerrors.ErrInvalidAmount},
			{"negative amount", PurchaseRequest{UserID: "alice", TokenAmount: -4, PaymentMethod: "card"}, pkgerrors.ErrInvalidAmount},
			{"missing user", PurchaseRequest{TokenAmount: 1, PaymentMethod: "card"}, pkgerrors.ErrEmptyUserID},
			{"unknown method", PurchaseRequest{UserID: "alice", TokenAmount: 1, PaymentMethod: "crypto"}, pkgerrors.ErrInvalidPaymentMethod},
			{"above card limit", PurchaseRequest{UserID: "alice", TokenAmount: 201, PaymentMethod: "card"}, pkgerrors.ErrAmountOutOfBounds},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				res, err := l.svc.PurchaseTokens(ctx, tc.req)
				assert.Nil(t, res)
				assert.ErrorIs(t, err, tc.want)
				assert.ErrorIs(t, err, pkgerrors.ErrInvalidRequest)
			})
		}

		assert.Empty(t, l.journal(t, "alice"))
		_, err := l.accounts.Get(ctx, "alice")
		assert.ErrorIs(t, err, pkgerrors.ErrAccountNotFound)
	})

	t.Run("retried reference is replayed", func(t *testing.T) {
		l := newMemoryLedger(t)
		req := PurchaseRequest{UserID: "alice", TokenAmount: 10, PaymentMethod: "card", PaymentReference: "ch_123"}

		first, err := l.svc.PurchaseTokens(ctx, req)
		require.NoError(t, err)
		second, err := l.svc.PurchaseTokens(ctx, req)
		require.NoError(t, err)

		assert.True(t, second.Replayed)
		assert.Equal(t, first.TransactionID, second.TransactionID)
		assert.Equal(t, int64(10), second.NewBalance)
		assert.Len(t, l.journal(t, "alice"), 1)
	})

	t.Run("reference reused by another user", func(t *testing.T) {
		l := newMemoryLedger(t)
		_, err := l.svc.PurchaseTokens(ctx, PurchaseRequest{UserID: "alice", TokenAmount: 10, PaymentMethod: "card", PaymentReference: "ch_123"})
		require.NoError(t, err)

		res, err := l.svc.PurchaseTokens(ctx, PurchaseRequest{UserID: "bob", TokenAmount: 10, PaymentMethod: "card", PaymentReference: "ch_123"})
		assert.ErrorIs(t, err, pkgerrors.ErrDuplicatePaymentReference)
		require.NotNil(t, res)
		assert.Zero(t, res.NewBalance)
		assert.Empty(t, l.journal(t, "bob"))
	})

	t.Run("pending reference reports in progress", func(t *testing.T) {
		l := newMemoryLedger(t)
		_, err := l.transactions.Create(ctx, &models.TokenTransaction{
			UserID: "alice", Type: models.TypePurchase, TokenAmount: 10, PaymentMethod: "card", PaymentReference: "ch_9",
		})
		require.NoError(t, err)

		_, err = l.svc.PurchaseTokens(ctx, PurchaseRequest{UserID: "alice", TokenAmount: 10, PaymentMethod: "card", PaymentReference: "ch_9"})
		assert.ErrorIs(t, err, pkgerrors.ErrRequestInProgress)
	})

	t.Run("caller gone before mutation", func(t *testing.T) {
		l := newMemoryLedger(t)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		res, err := l.svc.PurchaseTokens(cancelled, PurchaseRequest{UserID: "alice", TokenAmount: 10, PaymentMethod: "card"})
		assert.ErrorIs(t, err, context.Canceled)
		require.NotNil(t, res)
		assert.Zero(t, res.NewBalance)

		txs := l.journal(t, "alice")
		require.Len(t, txs, 1)
		assert.Equal(t, models.StatusCancelled, txs[0].Status)
		l.requireConsistent(t, "alice")
	})
}

func TestLedgerService_InvestTokens(t *testing.T) {
	ctx := context.Background()

	t.Run("successful investment", func(t *testing.T) {
		l := newMemoryLedger(t)
		l.fund(t, "alice", 20)
		l.property(t, "prop-1", 100)

		res, err := l.svc.InvestTokens(ctx, InvestRequest{UserID: "alice", PropertyID: "prop-1", TokenAmount: 5})
		require.NoError(t, err)
		assert.Equal(t, int64(15), res.NewBalance)
		assert.NotZero(t, res.InvestmentID)

		inv, err := l.properties.GetInventory(ctx, "prop-1")
		require.NoError(t, err)
		assert.Equal(t, int64(95), inv.AvailableTokens)

		investment, err := l.properties.GetInvestmentByTransaction(ctx, res.TransactionID)
		require.NoError(t, err)
		assert.Equal(t, models.InvestmentActive, investment.Status)
		assert.Equal(t, int64(5), investment.TokensPurchased)
		assert.True(t, decimal.NewFromInt(5000).Equal(investment.TotalAmount))

		spend, err := l.transactions.GetByID(ctx, res.TransactionID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, spend.Status)
		assert.Equal(t, "prop-1", spend.PropertyID)

		acc := l.requireConsistent(t, "alice")
		assert.Equal(t, int64(5), acc.TotalSpent)
	})

	t.Run("insufficient balance is journaled as failed", func(t *testing.T) {
		l := newMemoryLedger(t)
		l.fund(t, "alice", 5)
		l.property(t, "prop-1", 100)

		res, err := l.svc.InvestTokens(ctx, InvestRequest{UserID: "alice", PropertyID: "prop-1", TokenAmount: 10})
		assert.ErrorIs(t, err, pkgerrors.ErrInsufficientBalance)
		require.NotNil(t, res)
		assert.Equal(t, int64(5), res.NewBalance)

		spend, err := l.transactions.GetByID(ctx, res.TransactionID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusFailed, spend.Status)
		assert.Equal(t, int64(10), spend.TokenAmount)

		inv, _ := l.properties.GetInventory(ctx, "prop-1")
		assert.Equal(t, int64(100), inv.AvailableTokens)
		acc := l.requireConsistent(t, "alice")
		assert.Equal(t, int64(5), acc.Balance)
	})

	t.Run("sold out property is compensated", func(t *testing.T) {
		l := newMemoryLedger(t)
		l.fund(t, "alice", 10)
		l.property(t, "prop-1", 3)
		before := testutil.ToFloat64(observability.LedgerCompensations)

		res, err := l.svc.InvestTokens(ctx, InvestRequest{UserID: "alice", PropertyID: "prop-1", TokenAmount: 5})
		assert.ErrorIs(t, err, pkgerrors.ErrInsufficientInventory)
		require.NotNil(t, res)
		assert.Equal(t, int64(10), res.NewBalance)
		assert.Zero(t, res.InvestmentID)
		assert.Equal(t, before+1, testutil.ToFloat64(observability.LedgerCompensations))

		spend, err := l.transactions.GetByID(ctx, res.TransactionID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusFailed, spend.Status)

		acc := l.requireConsistent(t, "alice")
		assert.Equal(t, int64(10), acc.Balance)
		assert.Zero(t, acc.TotalSpent)
	})

	t.Run("user without an account is journaled as insufficient balance", func(t *testing.T) {
		l := newMemoryLedger(t)
		l.property(t, "prop-1", 100)

		res, err := l.svc.InvestTokens(ctx, InvestRequest{UserID: "carol", PropertyID: "prop-1", TokenAmount: 1})
		assert.ErrorIs(t, err, pkgerrors.ErrInsufficientBalance)
		require.NotNil(t, res)
		assert.Zero(t, res.NewBalance)

		txs := l.journal(t, "carol")
		require.Len(t, txs, 1)
		assert.Equal(t, models.StatusFailed, txs[0].Status)
		_, err = l.accounts.Get(ctx, "carol")
		assert.ErrorIs(t, err, pkgerrors.ErrAccountNotFound, "only purchases create accounts")
	})

	t.Run("unknown property is rejected before the journal", func(t *testing.T) {
		l := newMemoryLedger(t)
		l.fund(t, "alice", 10)

		res, err := l.svc.InvestTokens(ctx, InvestRequest{UserID: "alice", PropertyID: "nope", TokenAmount: 1})
		assert.Nil(t, res)
		assert.ErrorIs(t, err, pkgerrors.ErrPropertyNotFound)
		assert.Len(t, l.journal(t, "alice"), 1)
	})

	t.Run("invalid requests", func(t *testing.T) {
		l := newMemoryLedger(t)
		for _, req := range []InvestRequest{
			{PropertyID: "prop-1", TokenAmount: 1},
			{UserID: "alice", TokenAmount: 1},
			{UserID: "alice", PropertyID: "prop-1"},
		} {
			res, err := l.svc.InvestTokens(ctx, req)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, pkgerrors.ErrInvalidRequest)
		}
	})
}

func TestLedgerService_ConcurrentInvestorsNeverOversell(t *testing.T) {
	ctx := context.Background()

	t.Run("two investors, three tokens", func(t *testing.T) {
		l := newMemoryLedger(t)
		l.fund(t, "alice", 10)
		l.fund(t, "bob", 10)
		l.property(t, "prop-1", 3)

		users := []string{"alice", "bob"}
		errs := make([]error, len(users))
		var wg sync.WaitGroup
		for i, user := range users {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = l.svc.InvestTokens(ctx, InvestRequest{UserID: user, PropertyID: "prop-1", TokenAmount: 2})
			}()
		}
		wg.Wait()

		var succeeded int
		for i, err := range errs {
			acc := l.requireConsistent(t, users[i])
			if err == nil {
				succeeded++
				assert.Equal(t, int64(8), acc.Balance)
				continue
			}
			assert.ErrorIs(t, err, pkgerrors.ErrInsufficientInventory)
			assert.Equal(t, int64(10), acc.Balance)
		}
		assert.Equal(t, 1, succeeded)

		inv, _ := l.properties.GetInventory(ctx, "prop-1")
		assert.Equal(t, int64(1), inv.AvailableTokens)
	})

	t.Run("many investors", func(t *testing.T) {
		l := newMemoryLedger(t)
		l.property(t, "prop-1", 25)
		users := make([]string, 12)
		for i := range users {
			users[i] = fmt.Sprintf("user-%d", i)
			l.fund(t, users[i], 10)
		}

		var wg sync.WaitGroup
		for _, user := range users {
			for range 3 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, _ = l.svc.InvestTokens(ctx, InvestRequest{UserID: user, PropertyID: "prop-1", TokenAmount: 2})
				}()
			}
		}
		wg.Wait()

		audit, err := l.svc.AuditProperty(ctx, "prop-1")
		require.NoError(t, err)
		assert.True(t, audit.Consistent)
		assert.GreaterOrEqual(t, audit.AvailableTokens, int64(0))
		assert.LessOrEqual(t, audit.ActiveInvestedTokens, audit.TotalTokens)
		assert.Equal(t, int64(1), audit.AvailableTokens)
		for _, user := range users {
			l.requireConsistent(t, user)
		}
	})
}

func TestLedgerService_ConcurrentSpendsForOneUser(t *testing.T) {
	ctx := context.Background()
	l := newMemoryLedger(t)
	l.fund(t, "alice", 10)
	l.property(t, "prop-1", 1000)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var succeeded, rejected int
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.svc.InvestTokens(ctx, InvestRequest{UserID: "alice", PropertyID: "prop-1", TokenAmount: 3})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if errors.Is(err, pkgerrors.ErrInsufficientBalance) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 7, rejected)
	acc := l.requireConsistent(t, "alice")
	assert.Equal(t, int64(1), acc.Balance)
}

func TestLedgerService_Conservation(t *testing.T) {
	ctx := context.Background()
	l := newMemoryLedger(t)
	l.property(t, "small", 4)
	l.property(t, "big", 100)

	steps := []func() error{
		func() error {
			_, err := l.svc.PurchaseTokens(ctx, PurchaseRequest{UserID: "alice", TokenAmount: 12, PaymentMethod: "card", PaymentReference: "a"})
			return err
		},
		func() error {
			_, err := l.svc.InvestTokens(ctx, InvestRequest{UserID: "alice", PropertyID: "small", TokenAmount: 6})
			return err
		},
		func() error {
			_, err := l.svc.InvestTokens(ctx, InvestRequest{UserID: "alice", PropertyID: "big", TokenAmount: 7})
			return err
		},
		func() error {
			_, err := l.svc.InvestTokens(ctx, InvestRequest{UserID: "alice", PropertyID: "big", TokenAmount: 20})
			return err
		},
		func() error {
			_, err := l.svc.PurchaseTokens(ctx, PurchaseRequest{UserID: "alice", TokenAmount: 0, PaymentMethod: "card"})
			return err
		},
		func() error {
			_, err := l.svc.InvestTokens(ctx, InvestRequest{UserID: "alice", PropertyID: "small", TokenAmount: 4})
			return err
		},
	}
	for i, step := range steps {
		_ = step()
		acc := l.requireConsistent(t, "alice")
		assert.True(t, acc.Consistent(), "step %d", i)
	}

	acc, err := l.svc.GetAccount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), acc.Balance)
	assert.Equal(t, int64(11), acc.TotalSpent)
}

func TestLedgerService_GetBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown user has zero balance", func(t *testing.T) {
		l := newMemoryLedger(t)
		balance, err := l.svc.GetBalance(ctx, "ghost")
		require.NoError(t, err)
		assert.Zero(t, balance)
	})

	t.Run("served from cache", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		accounts := repositorymocks.NewMockAccountRepository(ctrl)
		redisClient := redismocks.NewMockRedisClient(ctrl)
		svc := NewLedgerService(accounts, nil, nil, nil, redisClient, kafka.NoopProducer{}, Options{})

		redisClient.EXPECT().Get(gomock.Any(), redis.BalanceKey("alice")).Return("42", nil)

		balance, err := svc.GetBalance(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(42), balance)
	})

	t.Run("cache miss reads and caches", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		accounts := repositorymocks.NewMockAccountRepository(ctrl)
		redisClient := redismocks.NewMockRedisClient(ctrl)
		svc := NewLedgerService(accounts, nil, nil, nil, redisClient, kafka.NoopProducer{}, Options{CacheTTL: time.Minute})

		gomock.InOrder(
			redisClient.EXPECT().Get(gomock.Any(), redis.BalanceKey("alice")).Return("", redis.ErrKeyNotFound),
			accounts.EXPECT().Get(gomock.Any(), "alice").Return(&models.UserTokenAccount{UserID: "alice", Balance: 7, TotalPurchased: 7}, nil),
			redisClient.EXPECT().Set(gomock.Any(), redis.BalanceKey("alice"), "7", time.Minute).Return(nil),
		)

		balance, err := svc.GetBalance(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(7), balance)
	})

	t.Run("storage error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		accounts := repositorymocks.NewMockAccountRepository(ctrl)
		svc := NewLedgerService(accounts, nil, nil, nil, redis.NoopClient{}, kafka.NoopProducer{}, Options{})

		accounts.EXPECT().Get(gomock.Any(), "alice").Return(nil, errors.New("connection refused"))

		_, err := svc.GetBalance(ctx, "alice")
		assert.ErrorContains(t, err, "failed to get balance")
	})
}

type mockLedger struct {
	svc          *ledgerService
	accounts     *repositorymocks.MockAccountRepository
	transactions *repositorymocks.MockTransactionRepository
	properties   *repositorymocks.MockPropertyRepository
	redis        *redismocks.MockRedisClient
	producer     *kafkamocks.MockKafkaProducer
}

func newMockLedger(t *testing.T) *mockLedger {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := &mockLedger{
		accounts:     repositorymocks.NewMockAccountRepository(ctrl),
		transactions: repositorymocks.NewMockTransactionRepository(ctrl),
		properties:   repositorymocks.NewMockPropertyRepository(ctrl),
		redis:        redismocks.NewMockRedisClient(ctrl),
		producer:     kafkamocks.NewMockKafkaProducer(ctrl),
	}
	m.svc = NewLedgerService(m.accounts, m.transactions, m.properties,
		memory.NewPaymentMethodRepository(memory.DefaultPaymentMethods()...),
		m.redis, m.producer, Options{})
	m.svc.newBackOff = func() backoff.BackOff { return &backoff.StopBackOff{} }
	// Drain before gomock verifies the expectations.
	t.Cleanup(m.svc.Drain)
	return m
}

func createAs(id int64) func(context.Context, *models.TokenTransaction) (int64, error) {
	return func(_ context.Context, tx *models.TokenTransaction) (int64, error) {
		tx.ID = id
		tx.Status = models.StatusPending
		return id, nil
	}
}

func TestLedgerService_PurchaseTokens_Mocked(t *testing.T) {
	ctx := context.Background()
	account := &models.UserTokenAccount{UserID: "alice"}
	credited := &models.UserTokenAccount{UserID: "alice", Balance: 10, TotalPurchased: 10}

	t.Run("publishes a completed event", func(t *testing.T) {
		m := newMockLedger(t)
		var payload []byte

		m.redis.EXPECT().Get(gomock.Any(), redis.PaymentMethodKey("card")).Return("", redis.ErrKeyNotFound)
		m.redis.EXPECT().Set(gomock.Any(), redis.PaymentMethodKey("card"), gomock.Any(), 5*time.Minute).Return(nil)
		m.accounts.EXPECT().GetOrCreate(gomock.Any(), "alice").Return(account, nil)
		m.transactions.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(createAs(7))
		m.accounts.EXPECT().ApplyPurchase(gomock.Any(), "alice", int64(7), int64(10)).Return(credited, nil)
		m.redis.EXPECT().Del(gomock.Any(), redis.BalanceKey("alice")).Return(nil)
		m.transactions.EXPECT().MarkCompleted(gomock.Any(), int64(7)).Return(&models.TokenTransaction{ID: 7, Status: models.StatusCompleted}, nil)
		m.producer.EXPECT().Send(gomock.Any(), "ledger-transactions", "alice", gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _ string, value []byte) error {
				payload = value
				return nil
			})

		res, err := m.svc.PurchaseTokens(ctx, PurchaseRequest{UserID: "alice", TokenAmount: 10, PaymentMethod: "card"})
		require.NoError(t, err)
		assert.Equal(t, int64(7), res.TransactionID)
		assert.Equal(t, int64(10), res.NewBalance)

		m.svc.Drain()
		var event models.LedgerEvent
		require.NoError(t, json.Unmarshal(payload, &event))
		assert.NotEmpty(t, event.EventID)
		assert.Equal(t, int64(7), event.TransactionID)
		assert.Equal(t, models.StatusCompleted, event.Status)
		assert.Equal(t, int64(10), event.Balance)
	})

	t.Run("credit is reversed when the journal cannot be completed", func(t *testing.T) {
		m := newMockLedger(t)

		m.redis.EXPECT().Get(gomock.Any(), gomock.Any()).Return("", redis.ErrKeyNotFound)
		m.redis.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		m.accounts.EXPECT().GetOrCreate(gomock.Any(), "alice").Return(account, nil)
		m.transactions.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(createAs(7))
		m.accounts.EXPECT().ApplyPurchase(gomock.Any(), "alice", int64(7), int64(10)).Return(credited, nil)
		m.redis.EXPECT().Del(gomock.Any(), redis.BalanceKey("alice")).Return(nil)
		m.transactions.EXPECT().MarkCompleted(gomock.Any(), int64(7)).Return(nil, errors.New("connection reset"))
		m.accounts.EXPECT().ReversePurchase(gomock.Any(), "alice", int64(7), int64(10)).Return(&models.UserTokenAccount{UserID: "alice"}, nil)
		m.transactions.EXPECT().MarkFailed(gomock.Any(), int64(7)).Return(&models.TokenTransaction{ID: 7, Status: models.StatusFailed}, nil)
		m.producer.EXPECT().Send(gomock.Any(), gomock.Any(), "alice", gomock.Any()).Return(nil)

		res, err := m.svc.PurchaseTokens(ctx, PurchaseRequest{UserID: "alice", TokenAmount: 10, PaymentMethod: "card"})
		assert.ErrorContains(t, err, "connection reset")
		require.NotNil(t, res)
		assert.Zero(t, res.NewBalance)
	})

	t.Run("publish failure does not fail the purchase", func(t *testing.T) {
		m := newMockLedger(t)

		m.redis.EXPECT().Get(gomock.Any(), gomock.Any()).Return("", redis.ErrKeyNotFound)
		m.redis.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
		m.accounts.EXPECT().GetOrCreate(gomock.Any(), "alice").Return(account, nil)
		m.transactions.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(createAs(7))
		m.accounts.EXPECT().ApplyPurchase(gomock.Any(), "alice", int64(7), int64(10)).Return(credited, nil)
		m.redis.EXPECT().Del(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
		m.transactions.EXPECT().MarkCompleted(gomock.Any(), int64(7)).Return(&models.TokenTransaction{ID: 7}, nil)
		m.producer.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("broker unavailable"))

		res, err := m.svc.PurchaseTokens(ctx, PurchaseRequest{UserID: "alice", TokenAmount: 10, PaymentMethod: "card"})
		require.NoError(t, err)
		assert.Equal(t, int64(10), res.NewBalance)
	})
}

func TestLedgerService_InvestTokens_Mocked(t *testing.T) {
	ctx := context.Background()
	inventory := &models.PropertyInventory{PropertyID: "prop-1", TotalTokens: 100, AvailableTokens: 100}
	funded := &models.UserTokenAccount{UserID: "alice", Balance: 10, TotalPurchased: 10}
	debited := &models.UserTokenAccount{UserID: "alice", Balance: 5, TotalPurchased: 10, TotalSpent: 5}
	req := InvestRequest{UserID: "alice", PropertyID: "prop-1", TokenAmount: 5}

	expectDebit := func(m *mockLedger) {
		m.properties.EXPECT().GetInventory(gomock.Any(), "prop-1").Return(inventory, nil)
		m.accounts.EXPECT().Get(gomock.Any(), "alice").Return(funded, nil)
		m.transactions.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(createAs(9))
		m.accounts.EXPECT().ApplySpend(gomock.Any(), "alice", int64(9), int64(5)).Return(debited, nil)
		m.redis.EXPECT().Del(gomock.Any(), redis.BalanceKey("alice")).Return(nil)
	}

	t.Run("failed compensation leaves the row pending", func(t *testing.T) {
		m := newMockLedger(t)
		expectDebit(m)
		m.properties.EXPECT().ReserveAndAllocate(gomock.Any(), "prop-1", "alice", int64(9), int64(5), gomock.Any()).
			Return(nil, pkgerrors.ErrInsufficientInventory)
		m.accounts.EXPECT().ReverseSpend(gomock.Any(), "alice", int64(9), int64(5)).Return(nil, errors.New("connection reset"))

		res, err := m.svc.InvestTokens(ctx, req)
		assert.ErrorIs(t, err, pkgerrors.ErrInsufficientInventory)
		require.NotNil(t, res)
		assert.Equal(t, int64(9), res.TransactionID)
		assert.Equal(t, int64(5), res.NewBalance)
	})

	t.Run("allocation that committed despite an error is kept", func(t *testing.T) {
		m := newMockLedger(t)
		expectDebit(m)
		m.properties.EXPECT().ReserveAndAllocate(gomock.Any(), "prop-1", "alice", int64(9), int64(5), gomock.Any()).
			Return(nil, errors.New("failed to commit allocation: connection reset"))
		m.properties.EXPECT().GetInvestmentByTransaction(gomock.Any(), int64(9)).
			Return(&models.Investment{ID: 4, TransactionID: 9, TokensPurchased: 5, Status: models.InvestmentActive}, nil)
		m.transactions.EXPECT().MarkCompleted(gomock.Any(), int64(9)).Return(&models.TokenTransaction{ID: 9, Status: models.StatusCompleted}, nil)
		m.producer.EXPECT().Send(gomock.Any(), gomock.Any(), "alice", gomock.Any()).Return(nil)

		res, err := m.svc.InvestTokens(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, int64(4), res.InvestmentID)
		assert.Equal(t, int64(5), res.NewBalance)
	})

	t.Run("allocation that did not commit is compensated", func(t *testing.T) {
		m := newMockLedger(t)
		expectDebit(m)
		m.properties.EXPECT().ReserveAndAllocate(gomock.Any(), "prop-1", "alice", int64(9), int64(5), gomock.Any()).
			Return(nil, errors.New("failed to commit allocation: connection reset"))
		m.properties.EXPECT().GetInvestmentByTransaction(gomock.Any(), int64(9)).Return(nil, pkgerrors.ErrInvestmentNotFound)
		m.accounts.EXPECT().ReverseSpend(gomock.Any(), "alice", int64(9), int64(5)).Return(funded, nil)
		m.transactions.EXPECT().MarkFailed(gomock.Any(), int64(9)).Return(&models.TokenTransaction{ID: 9, Status: models.StatusFailed}, nil)
		m.producer.EXPECT().Send(gomock.Any(), gomock.Any(), "alice", gomock.Any()).Return(nil)

		res, err := m.svc.InvestTokens(ctx, req)
		assert.ErrorContains(t, err, "failed to commit allocation")
		require.NotNil(t, res)
		assert.Equal(t, int64(10), res.NewBalance)
	})

	t.Run("unknown allocation outcome leaves the row pending", func(t *testing.T) {
		m := newMockLedger(t)
		expectDebit(m)
		m.properties.EXPECT().ReserveAndAllocate(gomock.Any(), "prop-1", "alice", int64(9), int64(5), gomock.Any()).
			Return(nil, errors.New("failed to commit allocation: connection reset"))
		m.properties.EXPECT().GetInvestmentByTransaction(gomock.Any(), int64(9)).Return(nil, errors.New("connection refused"))

		res, err := m.svc.InvestTokens(ctx, req)
		assert.ErrorContains(t, err, "failed to commit allocation")
		require.NotNil(t, res)
		assert.Equal(t, int64(5), res.NewBalance)
	})

	t.Run("allocated spend succeeds even if completion fails", func(t *testing.T) {
		m := newMockLedger(t)
		expectDebit(m)
		m.properties.EXPECT().ReserveAndAllocate(gomock.Any(), "prop-1", "alice", int64(9), int64(5), gomock.Any()).
			Return(&models.Investment{ID: 3, TransactionID: 9, TokensPurchased: 5, Status: models.InvestmentActive}, nil)
		m.transactions.EXPECT().MarkCompleted(gomock.Any(), int64(9)).Return(nil, errors.New("connection reset"))

		res, err := m.svc.InvestTokens(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, int64(3), res.InvestmentID)
		assert.Equal(t, int64(5), res.NewBalance)
	})

	t.Run("terminal row is counted as a transition violation", func(t *testing.T) {
		m := newMockLedger(t)
		expectDebit(m)
		m.properties.EXPECT().ReserveAndAllocate(gomock.Any(), "prop-1", "alice", int64(9), int64(5), gomock.Any()).
			Return(&models.Investment{ID: 3, TransactionID: 9}, nil)
		m.transactions.EXPECT().MarkCompleted(gomock.Any(), int64(9)).Return(nil, pkgerrors.ErrInvalidTransition)
		before := testutil.ToFloat64(observability.LedgerInvalidTransitions)

		_, err := m.svc.InvestTokens(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, before+1, testutil.ToFloat64(observability.LedgerInvalidTransitions))
	})
}
