package pricing

import (
	"math"

	"FXOptions/internal/domain/models"
)

// Breakeven returns the spot at expiry where the payoff repays the premium.
func Breakeven(strike, premium float64, kind models.OptionKind) float64 {
	if kind == models.Call {
		return strike + premium
	}
	return strike - premium
}

// ClassifyMoneyness returns the ATM/ITM/OTM label and the direction-adjusted
// distance of spot from strike in percent of strike.
func ClassifyMoneyness(spot, strike float64, kind models.OptionKind) (string, float64) {
	pct := (spot - strike) / strike * 100
	if kind == models.Put {
		pct = (strike - spot) / strike * 100
	}
	switch {
	case math.Abs(pct) < 1:
		return models.ATM, pct
	case pct > 0:
		return models.ITM, pct
	default:
		return models.OTM, pct
	}
}
