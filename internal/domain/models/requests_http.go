package models

// Requests for pricing HTTP endpoints. Defined in domain for consistency and reuse.
// Volatility and rates arrive as percentages; dates as YYYY-MM-DD.

type CalculateRequest struct {
	Spot          float64  `json:"spot" validate:"gt=0"`
	Strike        float64  `json:"strike" validate:"gt=0"`
	Volatility    float64  `json:"volatility" validate:"gte=0,lte=1000"`
	RateDomestic  float64  `json:"rate_domestic" validate:"gte=-100,lte=100"`
	RateForeign   float64  `json:"rate_foreign" validate:"gte=-100,lte=100"`
	Notional      float64  `json:"notional" validate:"gt=0"`
	OptionType    string   `json:"option_type" default:"call" validate:"oneof=call put CALL PUT Call Put"`
	ValuationDate string   `json:"valuation_date" validate:"required,datetime=2006-01-02"`
	ExpiryDate    string   `json:"expiry_date" validate:"required,datetime=2006-01-02"`
	DayCount      string   `json:"day_count" default:"ACT/365"`
	MarketPremium *float64 `json:"market_premium,omitempty" validate:"omitempty,gte=0"`
}

type ImpliedVolRequest struct {
	Spot          float64 `json:"spot" validate:"gt=0"`
	Strike        float64 `json:"strike" validate:"gt=0"`
	RateDomestic  float64 `json:"rate_domestic" validate:"gte=-100,lte=100"`
	RateForeign   float64 `json:"rate_foreign" validate:"gte=-100,lte=100"`
	Notional      float64 `json:"notional" validate:"gt=0"`
	OptionType    string  `json:"option_type" default:"call" validate:"oneof=call put CALL PUT Call Put"`
	ValuationDate string  `json:"valuation_date" validate:"required,datetime=2006-01-02"`
	ExpiryDate    string  `json:"expiry_date" validate:"required,datetime=2006-01-02"`
	DayCount      string  `json:"day_count" default:"ACT/365"`
	MarketPremium float64 `json:"market_premium" validate:"gt=0"`
}

type MarketDataRequest struct {
	Base          string `json:"base" default:"XAG" validate:"len=3,alpha"`
	Quote         string `json:"quote" default:"EUR" validate:"len=3,alpha"`
	ValuationDate string `json:"valuation_date" validate:"omitempty,datetime=2006-01-02"`
	ExpiryDate    string `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
}
