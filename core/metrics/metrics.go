// Package metrics exposes Prometheus collectors shared by the bot runtime and
// a small HTTP server publishing them.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m3rciful/lotbot/core/logger"
)

const namespace = "lotbot"

var (
	// UpdatesTotal counts processed Telegram updates by kind and status.
	UpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tg",
			Name:      "updates_total",
			Help:      "Total number of processed updates",
		},
		[]string{"kind", "status"},
	)

	// HandlerDuration observes handler latency by handler name and outcome.
	HandlerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tg",
			Name:      "handler_duration_seconds",
			Help:      "Handler duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"handler", "outcome"},
	)

	// RateLimitedTotal counts updates dropped by the rate limiter.
	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tg",
			Name:      "rate_limited_total",
			Help:      "Total number of updates dropped by rate limiting",
		},
	)

	// SendsTotal counts finished outbound API jobs by action and result.
	// Result is "ok" or the error kind of the last attempt.
	SendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tg",
			Name:      "sends_total",
			Help:      "Total number of outbound API jobs by result",
		},
		[]string{"action", "result"},
	)

	// SendRetriesTotal counts retried outbound API attempts.
	SendRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tg",
			Name:      "send_retries_total",
			Help:      "Total number of retried outbound API attempts",
		},
		[]string{"action"},
	)

	// TransitionsTotal counts conversation state transitions.
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fsm",
			Name:      "transitions_total",
			Help:      "Total number of conversation phase transitions",
		},
		[]string{"from", "to"},
	)

	// NotificationsTotal counts outbound notifications by kind and status.
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "sent_total",
			Help:      "Total number of outbound notifications",
		},
		[]string{"kind", "status"},
	)

	// ModerationTotal counts moderation decisions by entity and decision.
	ModerationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "moderation_total",
			Help:      "Total number of moderation decisions",
		},
		[]string{"entity", "decision"},
	)

	// SubmissionsTotal counts persisted submissions (lots, seller applications).
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "submissions_total",
			Help:      "Total number of submitted lots and seller applications",
		},
		[]string{"entity", "status"},
	)
)

// RecordUpdate records a processed update of the given kind.
func RecordUpdate(kind string, err error) {
	UpdatesTotal.WithLabelValues(kind, logger.Status(err)).Inc()
}

// RecordHandler records handler latency.
func RecordHandler(handler, outcome string, took time.Duration) {
	HandlerDuration.WithLabelValues(handler, outcome).Observe(took.Seconds())
}

// RecordSend records the result of a finished outbound job.
func RecordSend(action, result string) {
	SendsTotal.WithLabelValues(action, result).Inc()
}

// RecordSendRetry records one retry of an outbound job.
func RecordSendRetry(action string) {
	SendRetriesTotal.WithLabelValues(action).Inc()
}

// RecordTransition records a conversation phase change.
func RecordTransition(from, to string) {
	TransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordNotification records an outbound notification attempt.
func RecordNotification(kind string, err error) {
	NotificationsTotal.WithLabelValues(kind, logger.Status(err)).Inc()
}

// RecordModeration records an admin decision.
func RecordModeration(entity, decision string) {
	ModerationTotal.WithLabelValues(entity, decision).Inc()
}

// RecordSubmission records a persisted submission or a failed attempt.
func RecordSubmission(entity string, err error) {
	SubmissionsTotal.WithLabelValues(entity, logger.Status(err)).Inc()
}

// Serve publishes the default registry on addr until ctx is done.
// An empty addr disables the endpoint and blocks until ctx is done.
func Serve(ctx context.Context, addr string) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		<-ctx.Done()
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info(ctx, "metrics", "listen", slog.String("listen", addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		logger.Info(ctx, "metrics", "stopped")
		return nil
	}
}
