package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"FXOptions/internal/domain/models"
	"FXOptions/internal/services/volatility"
)

var errUnreachable = errors.New("dial tcp: connection refused")

type fakeQuotes struct {
	mu     sync.Mutex
	prices map[string]float64
	calls  []string
}

func (f *fakeQuotes) Quote(_ context.Context, symbol string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, symbol)
	p, ok := f.prices[symbol]
	if !ok {
		return 0, errUnreachable
	}
	return p, nil
}

type fakeHistory map[string][]float64

func (f fakeHistory) DailyCloses(_ context.Context, symbol string) ([]float64, error) {
	c, ok := f[symbol]
	if !ok {
		return nil, errUnreachable
	}
	return c, nil
}

type fakeRate struct {
	v   float64
	err error
}

func (f fakeRate) Rate(context.Context) (float64, error) { return f.v, f.err }

type fakeChains struct {
	byExpiry  map[time.Time]*models.OptionChain
	nearest   *models.OptionChain
	err       error
	requested []*time.Time
}

func (f *fakeChains) OptionChain(_ context.Context, _ string, expiry *time.Time) (*models.OptionChain, error) {
	f.requested = append(f.requested, expiry)
	if f.err != nil {
		return nil, f.err
	}
	if expiry == nil {
		return f.nearest, nil
	}
	c, ok := f.byExpiry[*expiry]
	if !ok {
		return nil, errUnreachable
	}
	return c, nil
}

type resolution struct{ field, kind string }

type fakeMetrics struct {
	resolved []resolution
}

func (m *fakeMetrics) RecordFetch(string, string, float64) {}
func (m *fakeMetrics) RecordCredentialRefresh()            {}

func (m *fakeMetrics) RecordResolved(field, kind string) {
	m.resolved = append(m.resolved, resolution{field, kind})
}

func testConfig() MarketDataConfig {
	return MarketDataConfig{
		MetalFutures: map[string]string{"XAG": "SI=F", "XAU": "GC=F", "XPT": "PL=F", "XPD": "PA=F"},
		LeaseRates:   map[string]float64{"XAG": 0.005, "XAU": 0.002, "XPT": 0.005, "XPD": 0.005},
		DefaultRates: map[string]float64{"EUR": 0.025, "USD": 0.045, "GBP": 0.04, "CHF": 0.005, "JPY": 0.005},
		RateMin:      0,
		RateMax:      0.20,
		History:      volatility.DefaultOptions(),
		HistoryRange: "3mo",
		ReferenceVol: ReferenceVolConfig{
			Underlyings:   map[string]string{"XAG": "SLV"},
			AssumedRate:   0.04,
			MoneynessBand: 0.05,
			MinLastPrice:  0.5,
			MinVol:        0.05,
			MaxVol:        3.0,
		},
	}
}

// sampleCloses has 15 returns, none filtered, sigma 0.19054537647348618.
var sampleCloses = []float64{100, 101, 100.5, 102, 101, 103, 102.5, 104, 103, 105, 104.5, 106, 105, 107, 106.5, 108}

var fixedNow = time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }
