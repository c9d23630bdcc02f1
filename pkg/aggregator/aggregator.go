package aggregator

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/voidshard/ledgerview/pkg/provider"
	"github.com/voidshard/ledgerview/pkg/store"
)

const (
	// DefaultCallTimeout bounds every single provider or store call.
	DefaultCallTimeout = 10 * time.Second
)

var (
	bankFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledgerview_bank_fetches_total",
		Help: "Account snapshot fetches made while building summaries, by outcome",
	}, []string{"outcome"})

	callLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledgerview_upstream_call_duration_seconds",
		Help:    "Latency of provider and store calls",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"call"})
)

// Aggregator combines a user's linked banks into summaries and per-account
// transaction feeds.
type Aggregator struct {
	store    store.Store
	provider provider.Provider

	timeout        time.Duration
	maxConcurrency int64
	log            *slog.Logger
}

type Option func(*Aggregator)

// WithCallTimeout sets the deadline applied to each outbound call. A slow
// bank in a summary is dropped just like a failed one.
func WithCallTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithMaxConcurrency caps in-flight snapshot fetches during Summary. Zero
// means one goroutine per bank.
func WithMaxConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.maxConcurrency = int64(n)
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.log = l
		}
	}
}

func New(s store.Store, p provider.Provider, opts ...Option) *Aggregator {
	a := &Aggregator{
		store:    s,
		provider: p,
		timeout:  DefaultCallTimeout,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.With("component", "aggregator")
	return a
}

// timed runs one outbound call under its own deadline and records how long
// it took.
func timed[T any](ctx context.Context, a *Aggregator, call string, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	timer := prometheus.NewTimer(callLatency.WithLabelValues(call))
	defer timer.ObserveDuration()

	return fn(ctx)
}
