package models

// Greeks are sensitivities per one unit of notional.
// Vega and both rhos are per percentage point, theta per calendar day.
type Greeks struct {
	Delta       float64
	Gamma       float64
	Vega        float64
	Theta       float64
	RhoDomestic float64
	RhoForeign  float64
}

// Scale multiplies every sensitivity by n.
func (g Greeks) Scale(n float64) Greeks {
	return Greeks{
		Delta:       g.Delta * n,
		Gamma:       g.Gamma * n,
		Vega:        g.Vega * n,
		Theta:       g.Theta * n,
		RhoDomestic: g.RhoDomestic * n,
		RhoForeign:  g.RhoForeign * n,
	}
}

// Moneyness labels.
const (
	ATM = "ATM"
	ITM = "ITM"
	OTM = "OTM"
)

// Assessment labels for a market premium comparison.
const (
	Overpriced  = "Overpriced"
	Underpriced = "Underpriced"
	Fair        = "Fair"
)

// PremiumComparison compares an observed market premium with the model.
type PremiumComparison struct {
	MarketPremium   float64
	MarketUnitPrice float64
	Difference      float64
	DifferencePct   float64
	Assessment      string
}

// PricingResult is the analytics payload for one option.
// Note: no transport (json/http) concerns here.
type PricingResult struct {
	Params       OptionParameters
	DaysToExpiry int
	PricePerUnit float64
	TotalPremium float64
	GreeksUnit   Greeks
	GreeksTotal  Greeks
	Breakeven    float64
	Moneyness    string
	MoneynessPct float64
	D1           *float64
	D2           *float64
	Comparison   *PremiumComparison
}

// ImpliedVolResult is the outcome of inverting the model against a premium.
type ImpliedVolResult struct {
	Volatility         float64
	PricePerUnitMarket float64
	Method             string
	Iterations         int
	Converged          bool
}
