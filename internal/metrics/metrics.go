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
)

// Metrics holds the collectors for one run. A nil *Metrics records nothing,
// so components can take it unconditionally.
type Metrics struct {
	txSubmitted   *prometheus.CounterVec
	txConfirmed   *prometheus.CounterVec
	txFailed      *prometheus.CounterVec
	retryAttempts *prometheus.CounterVec
	actionRuns    *prometheus.CounterVec
	swapsSkipped  prometheus.Counter
}

// New registers all collectors. If registry is nil, prometheus.DefaultRegisterer is used.
func New(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		txSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "activity_tx_submitted_total",
				Help: "Transactions submitted by action (send, approve, swap)",
			},
			[]string{"action"},
		),
		txConfirmed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "activity_tx_confirmed_total",
				Help: "Transactions confirmed with successful status by action",
			},
			[]string{"action"},
		),
		txFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "activity_tx_failed_total",
				Help: "Transaction failures by action and error kind",
			},
			[]string{"action", "kind"},
		),
		retryAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "activity_retry_failed_attempts_total",
				Help: "Failed attempts observed by the retry controller",
			},
			[]string{"op"},
		),
		actionRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "activity_action_runs_total",
				Help: "Orchestrated action runs by action and result",
			},
			[]string{"action", "result"},
		),
		swapsSkipped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "activity_swaps_skipped_total",
				Help: "Swap iterations skipped for insufficient input balance",
			},
		),
	}
}

func (m *Metrics) TxSubmitted(action string) {
	if m == nil {
		return
	}
	m.txSubmitted.WithLabelValues(action).Inc()
}

func (m *Metrics) TxConfirmed(action string) {
	if m == nil {
		return
	}
	m.txConfirmed.WithLabelValues(action).Inc()
}

func (m *Metrics) TxFailed(action, kind string) {
	if m == nil {
		return
	}
	m.txFailed.WithLabelValues(action, kind).Inc()
}

func (m *Metrics) RetryAttempt(op string) {
	if m == nil {
		return
	}
	m.retryAttempts.WithLabelValues(op).Inc()
}

func (m *Metrics) ActionRun(action string, ok bool) {
	if m == nil {
		return
	}
	result := "false"
	if ok {
		result = "true"
	}
	m.actionRuns.WithLabelValues(action, result).Inc()
}

func (m *Metrics) SwapSkipped() {
	if m == nil {
		return
	}
	m.swapsSkipped.Inc()
}

// Serve exposes gatherer on addr under /metrics until ctx is done.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("metrics listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
