package observability

import (
	"context"
	"net/http"

	"github.com/honeynil/prop-token-ledger/internal/config"
	"github.com/honeynil/prop-token-ledger/internal/infrastructure/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Setup(cfg *config.Config) (func(context.Context) error, http.Handler) {
	observability.InitLogger(cfg.LogLevel)
	observability.InitMetrics(cfg.MetricsAddr)
	tracerShutdown := observability.InitTracing(cfg.ServiceName)
	return tracerShutdown, promhttp.Handler()
}
