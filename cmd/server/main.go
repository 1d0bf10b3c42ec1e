package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/honeynil/prop-token-ledger/internal/api"
	"github.com/honeynil/prop-token-ledger/internal/config"
	"github.com/honeynil/prop-token-ledger/internal/handler"
	"github.com/honeynil/prop-token-ledger/internal/infrastructure/kafka"
	"github.com/honeynil/prop-token-ledger/internal/infrastructure/redis"
	"github.com/honeynil/prop-token-ledger/internal/observability"
	"github.com/honeynil/prop-token-ledger/internal/repository"
	"github.com/honeynil/prop-token-ledger/internal/repository/memory"
	"github.com/honeynil/prop-token-ledger/internal/repository/postgres"
	service "github.com/honeynil/prop-token-ledger/internal/services"
	"github.com/honeynil/prop-token-ledger/internal/sweeper"
	pkgerrors "github.com/honeynil/prop-token-ledger/pkg/errors"
	_ "github.com/lib/pq"
)

type stores struct {
	accounts       repository.AccountRepository
	transactions   repository.TransactionRepository
	properties     repository.PropertyRepository
	paymentMethods repository.PaymentMethodRepository
	close          func() error
}

func main() {
	cfg := config.Load()

	// Логи, метрики, трейсы
	shutdownTracing, metricsHandler := observability.Setup(cfg)
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			slog.Error("failed to shut down tracing", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		slog.Error("failed to open storage", "storage", cfg.Storage, "error", err)
		os.Exit(1)
	}
	defer st.close()

	for id, total := range cfg.SeedProperties {
		if _, err := st.properties.Create(ctx, id, total); err != nil && !errors.Is(err, pkgerrors.ErrPropertyExists) {
			slog.Error("failed to seed property", "property_id", id, "error", err)
		}
	}

	var (
		redisClient redis.RedisClient   = redis.NoopClient{}
		producer    kafka.KafkaProducer = kafka.NoopProducer{}
	)
	if cfg.Storage == config.StoragePostgres {
		client, err := redis.NewClient(ctx, cfg.RedisAddr)
		if err != nil {
			slog.Warn("redis unavailable, running without cache", "error", err)
		} else {
			redisClient = client
		}
		producer = kafka.NewProducer(cfg.KafkaBrokers)
	}
	defer redisClient.Close()
	defer producer.Close()

	svc := service.NewLedgerService(st.accounts, st.transactions, st.properties, st.paymentMethods, redisClient, producer, service.Options{
		TokenPrice:       cfg.TokenPrice,
		OperationTimeout: cfg.OperationTimeout,
		CacheTTL:         cfg.CacheTTL,
		EventTopic:       cfg.KafkaTopic,
	})

	if cfg.Storage == config.StoragePostgres {
		consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, svc)
		go consumer.Consume(ctx)
		defer consumer.Close()
	}

	reconciler := sweeper.NewReconciler(sweeper.Config{
		Interval:       cfg.ReconcileInterval,
		PendingTimeout: cfg.PendingTimeout,
		BatchSize:      cfg.ReconcileBatch,
		Workers:        cfg.ReconcileWorkers,
	}, svc)
	go func() {
		if err := reconciler.Start(ctx); err != nil {
			slog.Error("reconciler failed", "error", err)
		}
	}()

	h := handler.NewHandler(svc, reconciler)
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.SetupRouter(h, redisClient, cfg.JWTSecret, metricsHandler),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("starting server", "addr", cfg.HTTPAddr, "storage", cfg.Storage)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	if err := reconciler.Stop(shutdownCtx); err != nil {
		slog.Error("reconciler shutdown failed", "error", err)
	}
	svc.Drain()
	slog.Info("server stopped")
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.Storage == config.StorageMemory {
		slog.Warn("using in-memory storage, data is lost on exit")
		return &stores{
			accounts:       memory.NewAccountRepository(),
			transactions:   memory.NewTransactionRepository(),
			properties:     memory.NewPropertyRepository(),
			paymentMethods: memory.NewPaymentMethodRepository(memory.DefaultPaymentMethods()...),
			close:          func() error { return nil },
		}, nil
	}

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &stores{
		accounts:       postgres.NewPostgresAccountRepository(db),
		transactions:   postgres.NewPostgresTransactionRepository(db),
		properties:     postgres.NewPostgresPropertyRepository(db),
		paymentMethods: postgres.NewPostgresPaymentMethodRepository(db),
		close:          db.Close,
	}, nil
}
