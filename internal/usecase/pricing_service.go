package usecase

import (
	"FXOptions/internal/domain/models"
	"FXOptions/internal/pricing"
	"FXOptions/pkg/logger"
)

// PricingService assembles the full analytics payload for one option.
type PricingService struct {
	log *logger.Logger
}

func NewPricingService(l *logger.Logger) *PricingService {
	if l == nil {
		l = logger.Nop()
	}
	return &PricingService{log: l}
}

// ComputePricing prices params and, when marketPremium (a total for the
// whole notional) is given, compares it with the model.
func (s *PricingService) ComputePricing(params models.OptionParameters, marketPremium *float64) (*models.PricingResult, error) {
	unit, err := pricing.Price(params)
	if err != nil {
		return nil, err
	}
	greeks, err := pricing.Greeks(params)
	if err != nil {
		return nil, err
	}

	res := &models.PricingResult{
		Params:       params,
		PricePerUnit: unit,
		TotalPremium: unit * params.Notional,
		GreeksUnit:   greeks,
		GreeksTotal:  greeks.Scale(params.Notional),
		Breakeven:    pricing.Breakeven(params.Strike, unit, params.Kind),
	}
	res.Moneyness, res.MoneynessPct = pricing.ClassifyMoneyness(params.Spot, params.Strike, params.Kind)
	if d1, d2, ok := pricing.D1D2(params); ok {
		res.D1, res.D2 = &d1, &d2
	}
	if marketPremium != nil {
		res.Comparison = compare(*marketPremium, res.TotalPremium, params.Notional)
	}

	s.log.Debug("priced option",
		logger.String("kind", string(params.Kind)),
		logger.Float64("price_per_unit", unit),
		logger.Float64("expiry_years", params.Expiry),
	)
	return res, nil
}

// ComputeImpliedVol inverts the model against a total market premium.
func (s *PricingService) ComputeImpliedVol(params models.OptionParameters, marketPremiumTotal float64) (*models.ImpliedVolResult, error) {
	if err := params.ValidateWithoutVolatility(); err != nil {
		return nil, err
	}
	unit := marketPremiumTotal / params.Notional
	res, err := pricing.ImpliedVol(unit, params)
	if err != nil {
		return nil, err
	}
	if !res.Converged {
		s.log.Warn("implied vol did not converge",
			logger.Float64("premium_per_unit", unit),
			logger.Float64("last_sigma", res.Volatility),
			logger.Int("iterations", res.Iterations),
		)
	}
	return &res, nil
}

func compare(market, modelTotal, notional float64) *models.PremiumComparison {
	diff := market - modelTotal
	pct := 0.0
	if modelTotal > 0 {
		pct = diff / modelTotal * 100
	}
	assessment := models.Fair
	switch {
	case diff > 0:
		assessment = models.Overpriced
	case diff < 0:
		assessment = models.Underpriced
	}
	return &models.PremiumComparison{
		MarketPremium:   market,
		MarketUnitPrice: market / notional,
		Difference:      diff,
		DifferencePct:   pct,
		Assessment:      assessment,
	}
}
