package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/feral-file/ff-bounty-ledger/internal/logger"
)

var (
	// Projection
	EventsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bounty_ledger_events_applied_total",
			Help: "Ledger events whose mutation committed, by source and event type",
		},
		[]string{"source", "event_type"},
	)

	EventsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bounty_ledger_events_skipped_total",
			Help: "Ledger events skipped because they could not be decoded or applied",
		},
		[]string{"source", "reason"},
	)

	PagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bounty_ledger_pages_processed_total",
			Help: "Source pages whose cursor was persisted",
		},
		[]string{"source", "phase"},
	)

	SideCallFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bounty_ledger_side_call_failures_total",
			Help: "Post-commit notifications that failed and were dropped",
		},
		[]string{"notifier"},
	)

	// Settlement
	IntentTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bounty_settlement_intent_transitions_total",
			Help: "Treasury intent status transitions",
		},
		[]string{"saga", "status"},
	)

	ExternalCallRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bounty_settlement_external_call_retries_total",
			Help: "Retries of transient settlement service failures",
		},
		[]string{"call"},
	)

	StuckIntents = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bounty_settlement_stuck_intents",
			Help: "Intents sitting in a non-terminal status for longer than the stuck threshold",
		},
		[]string{"saga"},
	)

	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bounty_settlement_tick_duration_seconds",
		Help:    "Duration of an orchestrator tick",
		Buckets: prometheus.DefBuckets,
	})

	TicksSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bounty_settlement_ticks_skipped_total",
		Help: "Ticks skipped because the previous tick was still running",
	})

	PendingAuthorizations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bounty_authorization_pending_total",
			Help: "Payout authorization lifecycle events",
		},
		[]string{"outcome"},
	)
)

// Serve exposes /metrics on addr until ctx is canceled
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Failed to shut down metrics server", zap.Error(err))
		}
	}()

	logger.Info("Serving metrics", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
