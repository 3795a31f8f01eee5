package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestYearFraction(t *testing.T) {
	tests := []struct {
		name     string
		dc       DayCount
		wantDays int
		wantT    float64
	}{
		{"act/360", ACT360, 182, 182.0 / 360},
		{"act/365", ACT365, 182, 182.0 / 365},
		{"unknown tag uses 365", DayCount("30/360"), 182, 182.0 / 365},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, T, err := YearFraction(date(2025, 1, 1), date(2025, 7, 2), tt.dc)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDays, days)
			assert.InDelta(t, tt.wantT, T, 1e-12)
		})
	}
}

func TestYearFraction_SameDayAndNegative(t *testing.T) {
	days, T, err := YearFraction(date(2025, 3, 1), date(2025, 3, 1), ACT365)
	require.NoError(t, err)
	assert.Zero(t, days)
	assert.Zero(t, T)

	_, _, err = YearFraction(date(2025, 3, 2), date(2025, 3, 1), ACT365)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestYearFraction_IgnoresTimeOfDay(t *testing.T) {
	v := time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC)
	e := time.Date(2025, 3, 2, 1, 0, 0, 0, time.UTC)
	days, _, err := YearFraction(v, e, ACT365)
	require.NoError(t, err)
	assert.Equal(t, 1, days)
}

func TestParseOptionKind(t *testing.T) {
	k, err := ParseOptionKind("PUT")
	require.NoError(t, err)
	assert.Equal(t, Put, k)

	k, err = ParseOptionKind("")
	require.NoError(t, err)
	assert.Equal(t, Call, k)

	_, err = ParseOptionKind("digital")
	var ie *InputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "option_type", ie.Field)
}

func TestOptionParameters_Validate(t *testing.T) {
	valid := OptionParameters{Spot: 1, Strike: 1, Volatility: 0.1, Expiry: 1, Kind: Call, Notional: 1}
	require.NoError(t, valid.Validate())

	zeroVol := valid.WithVolatility(0)
	assert.NoError(t, zeroVol.Validate())

	negVol := valid.WithVolatility(-0.01)
	assert.ErrorIs(t, negVol.Validate(), ErrInvalidInput)
	assert.NoError(t, negVol.ValidateWithoutVolatility())

	atExpiry := negVol
	atExpiry.Expiry = 0
	assert.NoError(t, atExpiry.Validate())
}

func TestGreeksScale(t *testing.T) {
	g := Greeks{Delta: 0.5, Gamma: 2, Vega: 0.01, Theta: -0.001, RhoDomestic: 0.02, RhoForeign: -0.03}
	assert.Equal(t, Greeks{Delta: 50, Gamma: 200, Vega: 1, Theta: -0.1, RhoDomestic: 2, RhoForeign: -3}, g.Scale(100))
}

func TestMarketFields(t *testing.T) {
	f := Resolved(1.08, "EURUSD=X")
	assert.True(t, f.Present())
	assert.False(t, f.FallbackToDefault)

	d := Defaulted(0.025, "default")
	assert.True(t, d.FallbackToDefault)

	a := Absent("")
	assert.False(t, a.Present())
	assert.Equal(t, NoSource, a.Source)
}
