package models

import (
	"math"
	"strings"
	"time"
)

// OptionKind is the exercise right of a European vanilla option.
type OptionKind string

const (
	Call OptionKind = "call"
	Put  OptionKind = "put"
)

// ParseOptionKind normalizes a raw kind string. Empty input defaults to call.
func ParseOptionKind(s string) (OptionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "call":
		return Call, nil
	case "put":
		return Put, nil
	default:
		return "", NewInputError("option_type", "must be call or put, got %q", s)
	}
}

// DayCount is a day-count convention tag.
type DayCount string

const (
	ACT360 DayCount = "ACT/360"
	ACT365 DayCount = "ACT/365"
)

// Basis returns the year divisor: 360 for ACT/360, 365 for everything else.
func (d DayCount) Basis() float64 {
	if d == ACT360 {
		return 360
	}
	return 365
}

// YearFraction returns the whole-day difference between valuation and expiry
// and the corresponding time to expiry in years.
func YearFraction(valuation, expiry time.Time, dc DayCount) (int, float64, error) {
	v := time.Date(valuation.Year(), valuation.Month(), valuation.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 0, 0, 0, 0, time.UTC)
	days := int(e.Sub(v).Hours() / 24)
	if days < 0 {
		return 0, 0, NewInputError("expiry_date", "expiry date must be after valuation date")
	}
	return days, float64(days) / dc.Basis(), nil
}

// OptionParameters is a fully resolved input set for the pricing engine.
// Rates and volatility are decimals (0.03 == 3%), Expiry is in years.
type OptionParameters struct {
	Spot         float64
	Strike       float64
	Volatility   float64
	RateDomestic float64
	RateForeign  float64
	Expiry       float64
	Kind         OptionKind
	Notional     float64
}

// Validate rejects parameter sets the engine must never see.
func (p OptionParameters) Validate() error {
	if err := p.validateMarket(); err != nil {
		return err
	}
	if p.Volatility < 0 && p.Expiry > 0 {
		return NewInputError("volatility", "volatility must be non-negative, got %g", p.Volatility)
	}
	if !finite(p.Volatility) {
		return NewInputError("volatility", "volatility must be finite")
	}
	return nil
}

// ValidateWithoutVolatility is used for implied volatility requests where
// the volatility field is the unknown.
func (p OptionParameters) ValidateWithoutVolatility() error {
	return p.validateMarket()
}

func (p OptionParameters) validateMarket() error {
	if !finite(p.Spot) || p.Spot <= 0 {
		return NewInputError("spot", "spot must be positive, got %g", p.Spot)
	}
	if !finite(p.Strike) || p.Strike <= 0 {
		return NewInputError("strike", "strike must be positive, got %g", p.Strike)
	}
	if !finite(p.Notional) || p.Notional <= 0 {
		return NewInputError("notional", "notional must be positive, got %g", p.Notional)
	}
	if !finite(p.Expiry) || p.Expiry < 0 {
		return NewInputError("expiry", "time to expiry must be non-negative, got %g", p.Expiry)
	}
	if !finite(p.RateDomestic) {
		return NewInputError("rate_domestic", "domestic rate must be finite")
	}
	if !finite(p.RateForeign) {
		return NewInputError("rate_foreign", "foreign rate must be finite")
	}
	if p.Kind != Call && p.Kind != Put {
		return NewInputError("option_type", "must be call or put, got %q", string(p.Kind))
	}
	return nil
}

// WithVolatility returns a copy with sigma replaced.
func (p OptionParameters) WithVolatility(sigma float64) OptionParameters {
	p.Volatility = sigma
	return p
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
