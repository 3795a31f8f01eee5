// Package provider wraps outbound requests to public market data providers
// with throttling, metrics and logging. Every failure it returns is
// transient from the caller's point of view.
package provider

import (
	"context"
	"errors"
	"net/http"
	"time"

	"FXOptions/internal/domain/repository"
	"FXOptions/internal/service/ratelimit"
	xhttp "FXOptions/pkg/http"
	"FXOptions/pkg/logger"
	"FXOptions/pkg/metrics"
)

// Fetcher sends requests to a single named provider.
type Fetcher struct {
	name    string
	client  *xhttp.Client
	limiter *ratelimit.Limiter
	metrics repository.Metrics
	log     *logger.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLimiter throttles the provider through l, keyed by provider name.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(f *Fetcher) { f.limiter = l }
}

// WithMetrics records every request outcome.
func WithMetrics(m repository.Metrics) Option {
	return func(f *Fetcher) { f.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(f *Fetcher) { f.log = l }
}

func New(name string, client *xhttp.Client, opts ...Option) *Fetcher {
	f := &Fetcher{name: name, client: client, log: logger.Nop()}
	for _, opt := range opts {
		opt(f)
	}
	f.log = f.log.With(logger.String("source", name))
	return f
}

// Logger returns the provider-scoped logger.
func (f *Fetcher) Logger() *logger.Logger { return f.log }

// Fetch sends the request and decodes a 2xx body into dest.
func (f *Fetcher) Fetch(ctx context.Context, opts *xhttp.RequestOptions, dest interface{}) error {
	if !f.limiter.Allow(f.name) {
		f.record(metrics.OutcomeThrottled, 0)
		f.log.Warn("request throttled", logger.String("url", opts.URL))
		return ratelimit.ErrThrottled
	}

	start := time.Now()
	err := f.client.SendAndParse(ctx, opts, dest)
	elapsed := time.Since(start)
	if err != nil {
		f.record(metrics.OutcomeError, elapsed.Seconds())
		f.log.Warn("request failed",
			logger.String("url", opts.URL),
			logger.Duration("duration_ms", elapsed),
			logger.Error(err),
		)
		return err
	}
	f.record(metrics.OutcomeOK, elapsed.Seconds())
	f.log.Debug("request ok", logger.String("url", opts.URL), logger.Duration("duration_ms", elapsed))
	return nil
}

// Do sends the request and returns the raw response whatever its status.
// The caller closes the body.
func (f *Fetcher) Do(ctx context.Context, opts *xhttp.RequestOptions) (*http.Response, error) {
	if !f.limiter.Allow(f.name) {
		f.record(metrics.OutcomeThrottled, 0)
		return nil, ratelimit.ErrThrottled
	}
	start := time.Now()
	resp, err := f.client.SendRequest(ctx, opts)
	elapsed := time.Since(start)
	if err != nil {
		f.record(metrics.OutcomeError, elapsed.Seconds())
		f.log.Warn("request failed", logger.String("url", opts.URL), logger.Error(err))
		return nil, err
	}
	f.record(metrics.OutcomeOK, elapsed.Seconds())
	return resp, nil
}

func (f *Fetcher) record(outcome string, seconds float64) {
	if f.metrics != nil {
		f.metrics.RecordFetch(f.name, outcome, seconds)
	}
}

// IsThrottled reports whether err came from the local rate limiter.
func IsThrottled(err error) bool {
	return errors.Is(err, ratelimit.ErrThrottled)
}
