package api

import (
	"math"
	"time"

	models "FXOptions/internal/domain/models"

	"github.com/shopspring/decimal"
)

// Display precision of the JSON responses.
const (
	pricePlaces      = 6
	totalPlaces      = 2
	yearPlaces       = 6
	greeksUnitPlaces = 8
	greeksTotPlaces  = 4
	breakevenPlaces  = 4
	moneynessPlaces  = 2
	dPlaces          = 6
	ivPctPlaces      = 4
	volPctPlaces     = 2
	ratePctPlaces    = 4
)

type GreeksDTO struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Vega  float64 `json:"vega"`
	Theta float64 `json:"theta"`
	RhoD  float64 `json:"rho_d"`
	RhoF  float64 `json:"rho_f"`
}

type ComparisonDTO struct {
	MarketPremium   float64 `json:"market_premium"`
	MarketUnitPrice float64 `json:"market_unit_price"`
	Difference      float64 `json:"difference"`
	DifferencePct   float64 `json:"difference_pct"`
	Assessment      string  `json:"assessment"`
}

type PricingResponse struct {
	PricePerUnit  float64        `json:"price_per_unit"`
	TotalPremium  float64        `json:"total_premium"`
	DaysToExpiry  int            `json:"days_to_expiry"`
	T             float64        `json:"T"`
	GreeksUnit    GreeksDTO      `json:"greeks_unit"`
	GreeksTotal   GreeksDTO      `json:"greeks_total"`
	BreakevenSpot float64        `json:"breakeven_spot"`
	Moneyness     string         `json:"moneyness"`
	MoneynessPct  float64        `json:"moneyness_pct"`
	D1            *float64       `json:"d1"`
	D2            *float64       `json:"d2"`
	Comparison    *ComparisonDTO `json:"comparison,omitempty"`
}

type ImpliedVolResponse struct {
	ImpliedVolatility  float64 `json:"implied_volatility"` // percent
	PricePerUnitMarket float64 `json:"price_per_unit_market"`
	Method             string  `json:"method"`
	Iterations         int     `json:"iterations"`
	Converged          bool    `json:"converged"`
}

// ReferenceVolDTO reports a listed-options implied vol in percent.
type ReferenceVolDTO struct {
	IV              *float64 `json:"iv"`
	Underlying      string   `json:"underlying"`
	UnderlyingPrice *float64 `json:"underlying_price"`
	Expiry          string   `json:"expiry,omitempty"`
	Strikes         int      `json:"strikes"`
}

// MarketDataResponse carries vols and rates in percent. A nil value is an
// absent field; Sources says why.
type MarketDataResponse struct {
	Base          string            `json:"base"`
	Quote         string            `json:"quote"`
	Tenor         float64           `json:"tenor"`
	Timestamp     string            `json:"timestamp"`
	Spot          *float64          `json:"spot"`
	HistoricalVol *float64          `json:"historical_vol"`
	RateDomestic  *float64          `json:"rate_domestic"`
	RateForeign   *float64          `json:"rate_foreign"`
	ReferenceVol  *ReferenceVolDTO  `json:"reference_vol,omitempty"`
	Sources       map[string]string `json:"sources"`
	Defaults      map[string]bool   `json:"defaults"`
}

type DebugResponse struct {
	Version string `json:"version"`
	Started string `json:"started"`
	Today   string `json:"today"`
}

func NewPricingResponse(r *models.PricingResult) PricingResponse {
	out := PricingResponse{
		PricePerUnit:  round(r.PricePerUnit, pricePlaces),
		TotalPremium:  round(r.TotalPremium, totalPlaces),
		DaysToExpiry:  r.DaysToExpiry,
		T:             round(r.Params.Expiry, yearPlaces),
		GreeksUnit:    newGreeksDTO(r.GreeksUnit, greeksUnitPlaces),
		GreeksTotal:   newGreeksDTO(r.GreeksTotal, greeksTotPlaces),
		BreakevenSpot: round(r.Breakeven, breakevenPlaces),
		Moneyness:     r.Moneyness,
		MoneynessPct:  round(r.MoneynessPct, moneynessPlaces),
		D1:            roundPtr(r.D1, dPlaces),
		D2:            roundPtr(r.D2, dPlaces),
	}
	if c := r.Comparison; c != nil {
		out.Comparison = &ComparisonDTO{
			MarketPremium:   c.MarketPremium,
			MarketUnitPrice: round(c.MarketUnitPrice, pricePlaces),
			Difference:      round(c.Difference, totalPlaces),
			DifferencePct:   round(c.DifferencePct, moneynessPlaces),
			Assessment:      c.Assessment,
		}
	}
	return out
}

func NewImpliedVolResponse(r *models.ImpliedVolResult) ImpliedVolResponse {
	return ImpliedVolResponse{
		ImpliedVolatility:  round(r.Volatility*percent, ivPctPlaces),
		PricePerUnitMarket: round(r.PricePerUnitMarket, pricePlaces),
		Method:             r.Method,
		Iterations:         r.Iterations,
		Converged:          r.Converged,
	}
}

func NewMarketDataResponse(s *models.MarketDataSnapshot) MarketDataResponse {
	out := MarketDataResponse{
		Base:          s.Base,
		Quote:         s.Quote,
		Tenor:         round(s.Tenor, yearPlaces),
		Timestamp:     s.Timestamp.UTC().Format(time.RFC3339),
		Spot:          s.Spot.Value,
		HistoricalVol: percentPtr(s.HistoricalVol.Value, volPctPlaces),
		RateDomestic:  percentPtr(s.RateDomestic.Value, ratePctPlaces),
		RateForeign:   percentPtr(s.RateForeign.Value, ratePctPlaces),
		Sources: map[string]string{
			"spot":          s.Spot.Source,
			"volatility":    s.HistoricalVol.Source,
			"rate_domestic": s.RateDomestic.Source,
			"rate_foreign":  s.RateForeign.Source,
		},
		Defaults: map[string]bool{
			"rate_domestic": s.RateDomestic.FallbackToDefault,
			"rate_foreign":  s.RateForeign.FallbackToDefault,
		},
	}
	if rv := s.ReferenceVol; rv != nil {
		out.ReferenceVol = &ReferenceVolDTO{
			IV:              percentPtr(rv.Value, volPctPlaces),
			Underlying:      rv.Underlying,
			UnderlyingPrice: rv.UnderlyingPrice,
			Expiry:          rv.Expiry,
			Strikes:         rv.Strikes,
		}
		out.Sources["reference_vol"] = rv.Source
	}
	return out
}

func newGreeksDTO(g models.Greeks, places int32) GreeksDTO {
	return GreeksDTO{
		Delta: round(g.Delta, places),
		Gamma: round(g.Gamma, places),
		Vega:  round(g.Vega, places),
		Theta: round(g.Theta, places),
		RhoD:  round(g.RhoDomestic, places),
		RhoF:  round(g.RhoForeign, places),
	}
}

// round is half-away-from-zero on the decimal representation.
func round(x float64, places int32) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	f, _ := decimal.NewFromFloat(x).Round(places).Float64()
	return f
}

func roundPtr(x *float64, places int32) *float64 {
	if x == nil {
		return nil
	}
	v := round(*x, places)
	return &v
}

func percentPtr(x *float64, places int32) *float64 {
	if x == nil {
		return nil
	}
	v := round(*x*percent, places)
	return &v
}
