package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"FXOptions/internal/domain/models"
	"FXOptions/internal/domain/repository"
	"FXOptions/internal/services/volatility"
	"FXOptions/pkg/logger"
)

// Field names used in logs and metrics.
const (
	FieldSpot          = "spot"
	FieldHistoricalVol = "historical_vol"
	FieldRateDomestic  = "rate_domestic"
	FieldRateForeign   = "rate_foreign"
	FieldReferenceVol  = "reference_vol"
)

const (
	defaultTenor     = 1.0
	leaseRateSource  = "lease rate estimate"
	defaultSource    = "default"
	spotDecimals     = 6
	histVolDecimals  = 4
	irxPercentFactor = 100.0
)

// MarketDataConfig is the static configuration of the aggregator.
type MarketDataConfig struct {
	MetalFutures map[string]string  // metal code -> USD futures ticker
	LeaseRates   map[string]float64 // metal code -> foreign rate estimate
	DefaultRates map[string]float64 // currency -> fallback rate
	RateMin      float64
	RateMax      float64
	History      volatility.Options
	HistoryRange string // label used in provenance, e.g. "3mo"
	ReferenceVol ReferenceVolConfig
}

// RateSources are the central bank feeds. Any of them may be nil.
type RateSources struct {
	ESTR repository.RateSource
	DFR  repository.RateSource
	BoE  repository.RateSource
}

// MarketDataAggregator resolves a market data snapshot from unreliable
// public sources. It holds no quote state between calls.
type MarketDataAggregator struct {
	quotes  repository.QuoteSource
	history repository.HistorySource
	chains  repository.OptionChainSource
	rates   RateSources
	cfg     MarketDataConfig
	now     func() time.Time
	log     *logger.Logger
	metrics repository.Metrics
}

// AggregatorOption configures a MarketDataAggregator.
type AggregatorOption func(*MarketDataAggregator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) AggregatorOption {
	return func(a *MarketDataAggregator) { a.now = now }
}

// WithAggregatorLogger sets the logger.
func WithAggregatorLogger(l *logger.Logger) AggregatorOption {
	return func(a *MarketDataAggregator) { a.log = l }
}

// WithResolutionMetrics records how each field was resolved.
func WithResolutionMetrics(m repository.Metrics) AggregatorOption {
	return func(a *MarketDataAggregator) { a.metrics = m }
}

func NewMarketDataAggregator(
	quotes repository.QuoteSource,
	history repository.HistorySource,
	chains repository.OptionChainSource,
	rates RateSources,
	cfg MarketDataConfig,
	opts ...AggregatorOption,
) *MarketDataAggregator {
	if cfg.HistoryRange == "" {
		cfg.HistoryRange = "3mo"
	}
	a := &MarketDataAggregator{
		quotes:  quotes,
		history: history,
		chains:  chains,
		rates:   rates,
		cfg:     cfg,
		now:     time.Now,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Resolve builds a fresh snapshot for base/quote. Only malformed codes are
// an error; every unavailable fact is reported as absent or defaulted.
func (a *MarketDataAggregator) Resolve(ctx context.Context, base, quote string, tenor float64) (*models.MarketDataSnapshot, error) {
	base, err := normalizeCode("base", base)
	if err != nil {
		return nil, err
	}
	quote, err = normalizeCode("quote", quote)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(tenor) || math.IsInf(tenor, 0) || tenor <= 0 {
		tenor = defaultTenor
	}

	log := a.log.With(logger.String("pair", base+"/"+quote))
	snap := &models.MarketDataSnapshot{
		Base:      base,
		Quote:     quote,
		Tenor:     tenor,
		Timestamp: a.now().UTC(),
	}

	snap.Spot = a.spotChain(base, quote).Resolve(ctx, log, a.metrics)
	snap.HistoricalVol = a.historicalVolChain(base, quote).Resolve(ctx, log, a.metrics)
	snap.RateDomestic = a.rateChain(FieldRateDomestic, quote).Resolve(ctx, log, a.metrics)
	if lease, ok := a.cfg.LeaseRates[base]; ok {
		snap.RateForeign = models.Resolved(lease, leaseRateSource)
	} else {
		snap.RateForeign = a.rateChain(FieldRateForeign, base).Resolve(ctx, log, a.metrics)
	}
	if underlying, ok := a.cfg.ReferenceVol.Underlyings[base]; ok && a.chains != nil {
		snap.ReferenceVol = a.referenceVol(ctx, log, underlying, tenor)
	}

	log.Info("market data resolved",
		logger.Bool("spot", snap.Spot.Present()),
		logger.Bool("historical_vol", snap.HistoricalVol.Present()),
		logger.String("rate_domestic", snap.RateDomestic.Source),
		logger.String("rate_foreign", snap.RateForeign.Source),
	)
	return snap, nil
}

// normalizeCode upper-cases an instrument code and requires 3 ASCII letters.
func normalizeCode(field, code string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if len(c) != 3 {
		return "", models.NewInputError(field, "instrument code must be 3 letters, got %q", code)
	}
	for i := 0; i < len(c); i++ {
		if c[i] < 'A' || c[i] > 'Z' {
			return "", models.NewInputError(field, "instrument code must be 3 letters, got %q", code)
		}
	}
	return c, nil
}

// spotChain crosses metal futures through the USD leg, and tries FX pairs
// directly then inverted.
func (a *MarketDataAggregator) spotChain(base, quote string) Chain {
	c := Chain{Field: FieldSpot, Valid: positive}

	if ticker, ok := a.cfg.MetalFutures[base]; ok {
		if quote == "USD" {
			c.Sources = []Source{value(ticker, func(ctx context.Context) (float64, error) {
				v, err := a.quotes.Quote(ctx, ticker)
				return roundTo(v, spotDecimals), err
			})}
			return c
		}
		fx := quote + "USD=X"
		c.Sources = []Source{value(ticker+" / "+fx, func(ctx context.Context) (float64, error) {
			metalUSD, err := a.quotes.Quote(ctx, ticker)
			if err != nil {
				return 0, err
			}
			quoteUSD, err := a.quotes.Quote(ctx, fx)
			if err != nil {
				return 0, err
			}
			if quoteUSD == 0 {
				return 0, fmt.Errorf("%s quoted zero", fx)
			}
			return roundTo(metalUSD/quoteUSD, spotDecimals), nil
		})}
		return c
	}

	direct := base + quote + "=X"
	inverse := quote + base + "=X"
	c.Sources = []Source{
		value(direct, func(ctx context.Context) (float64, error) {
			v, err := a.quotes.Quote(ctx, direct)
			return roundTo(v, spotDecimals), err
		}),
		value("1 / "+inverse, func(ctx context.Context) (float64, error) {
			v, err := a.quotes.Quote(ctx, inverse)
			if err != nil {
				return 0, err
			}
			if v == 0 {
				return 0, fmt.Errorf("%s quoted zero", inverse)
			}
			return roundTo(1/v, spotDecimals), nil
		}),
	}
	return c
}

// historicalVolChain estimates volatility from daily closes of the futures
// contract for metals, or of the FX pair otherwise.
func (a *MarketDataAggregator) historicalVolChain(base, quote string) Chain {
	symbol := base + quote + "=X"
	if ticker, ok := a.cfg.MetalFutures[base]; ok {
		symbol = ticker
	}
	return Chain{
		Field: FieldHistoricalVol,
		Valid: positive,
		Sources: []Source{{
			Name: symbol,
			Fetch: func(ctx context.Context) (Observation, error) {
				closes, err := a.history.DailyCloses(ctx, symbol)
				if err != nil {
					return Observation{}, err
				}
				est, err := volatility.Historical(closes, a.cfg.History)
				if err != nil {
					return Observation{}, fmt.Errorf("%s: %w", symbol, err)
				}
				src := fmt.Sprintf("%s (%s, %dpts", symbol, a.cfg.HistoryRange, est.Points)
				if est.Outliers > 0 {
					src += fmt.Sprintf(", %d outliers removed", est.Outliers)
				}
				src += ")"
				return Observation{Value: roundTo(est.Sigma, histVolDecimals), Source: src}, nil
			},
		}},
	}
}

// rateChain is the per-currency risk-free rate fallback order.
func (a *MarketDataAggregator) rateChain(field, currency string) Chain {
	c := Chain{Field: field, Valid: within(a.cfg.RateMin, a.cfg.RateMax)}

	switch currency {
	case "EUR":
		if a.rates.ESTR != nil {
			c.Sources = append(c.Sources, value("ECB €STR", a.rates.ESTR.Rate))
		}
		if a.rates.DFR != nil {
			c.Sources = append(c.Sources, value("ECB DFR", a.rates.DFR.Rate))
		}
	case "USD":
		c.Sources = append(c.Sources, value("Yahoo ^IRX", func(ctx context.Context) (float64, error) {
			v, err := a.quotes.Quote(ctx, "^IRX")
			return v / irxPercentFactor, err
		}))
	case "GBP":
		if a.rates.BoE != nil {
			c.Sources = append(c.Sources, value("BoE Bank Rate", a.rates.BoE.Rate))
		}
	}

	if def, ok := a.cfg.DefaultRates[currency]; ok {
		c.Fallback = &Fallback{Value: def, Source: defaultSource}
	}
	return c
}
