package models

import "time"

// NoSource is the provenance recorded when every source in a chain failed.
const NoSource = "no source available"

// MarketField is a resolved market value or an explicit absence.
// Value is nil when absent; Source then carries the absence reason.
type MarketField struct {
	Value             *float64
	Source            string
	FallbackToDefault bool
}

// Present reports whether a value was resolved.
func (f MarketField) Present() bool { return f.Value != nil }

// Resolved builds a present field.
func Resolved(v float64, source string) MarketField {
	return MarketField{Value: &v, Source: source}
}

// Defaulted builds a field populated from a static default table.
func Defaulted(v float64, source string) MarketField {
	return MarketField{Value: &v, Source: source, FallbackToDefault: true}
}

// Absent builds an absent field with the given reason.
func Absent(reason string) MarketField {
	if reason == "" {
		reason = NoSource
	}
	return MarketField{Source: reason}
}

// ReferenceVol is an implied volatility read from a listed options chain.
type ReferenceVol struct {
	MarketField
	Underlying      string
	UnderlyingPrice *float64
	Expiry          string
	Strikes         int
}

// MarketDataSnapshot is built fresh for every request.
type MarketDataSnapshot struct {
	Base          string
	Quote         string
	Tenor         float64
	Timestamp     time.Time
	Spot          MarketField
	HistoricalVol MarketField
	RateDomestic  MarketField
	RateForeign   MarketField
	ReferenceVol  *ReferenceVol
}

// OptionQuote is a single listed option line from a chain provider.
type OptionQuote struct {
	Strike    float64
	LastPrice float64
}

// OptionChain is the call side of one expiry of a listed chain.
type OptionChain struct {
	Symbol          string
	UnderlyingPrice float64
	Expirations     []time.Time
	Expiry          time.Time
	Calls           []OptionQuote
}
