package observability

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Счётчик вызовов методов репозитория
	RepositoryCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repository_calls_total",
			Help: "Total number of repository method calls",
		},
		[]string{"method", "status"},
	)

	// Гистограмма времени выполнения запросов
	RepositoryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "repository_duration_seconds",
			Help:    "Duration of repository method calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	LedgerOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Ledger operations by outcome code",
		},
		[]string{"operation", "outcome"},
	)

	LedgerCompensations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_compensations_total",
			Help: "Spends credited back after a failed allocation",
		},
	)

	// Any increment here is a bug in the orchestrator and should page.
	LedgerInvalidTransitions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_invalid_transitions_total",
			Help: "Rejected journal status transitions",
		},
	)

	LedgerReconciled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_reconciled_total",
			Help: "Orphaned pending transactions resolved by the reconciler",
		},
		[]string{"resolution"},
	)

	LedgerAuditDrift = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_audit_drift_total",
			Help: "Audits that found stored counters disagreeing with the journal",
		},
		[]string{"kind"},
	)
)

var registerOnce sync.Once

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RepositoryCalls,
			RepositoryDuration,
			LedgerOperations,
			LedgerCompensations,
			LedgerInvalidTransitions,
			LedgerReconciled,
			LedgerAuditDrift,
		)
	})
}

// InitMetrics registers collectors and serves them on addr in the background.
func InitMetrics(addr string) {
	RegisterMetrics()
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
}
