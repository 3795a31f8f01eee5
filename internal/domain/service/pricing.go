package service

import (
	"context"

	"FXOptions/internal/domain/models"
)

// Pricer prices a single option and inverts market premiums.
type Pricer interface {
	ComputePricing(params models.OptionParameters, marketPremium *float64) (*models.PricingResult, error)
	ComputeImpliedVol(params models.OptionParameters, marketPremiumTotal float64) (*models.ImpliedVolResult, error)
}

// MarketDataResolver builds a market data snapshot for a pair.
type MarketDataResolver interface {
	Resolve(ctx context.Context, base, quote string, tenor float64) (*models.MarketDataSnapshot, error)
}
