package repository

import (
	"context"
	"time"

	"FXOptions/internal/domain/models"
)

// QuoteSource returns the latest price of a ticker.
type QuoteSource interface {
	Quote(ctx context.Context, symbol string) (float64, error)
}

// HistorySource returns daily closes, oldest first, with gaps removed.
type HistorySource interface {
	DailyCloses(ctx context.Context, symbol string) ([]float64, error)
}

// OptionChainSource returns the call side of a listed options chain. A nil
// expiry selects the provider's nearest expiry; the result always lists
// every available expiration.
type OptionChainSource interface {
	OptionChain(ctx context.Context, symbol string, expiry *time.Time) (*models.OptionChain, error)
}

// RateSource returns a single annualized rate as a decimal.
type RateSource interface {
	Rate(ctx context.Context) (float64, error)
}

// Metrics records outbound fetches and how market fields were resolved.
type Metrics interface {
	RecordFetch(source, outcome string, seconds float64)
	RecordResolved(field, kind string)
	RecordCredentialRefresh()
}
