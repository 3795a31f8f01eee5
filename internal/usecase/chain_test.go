package usecase

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"

	"FXOptions/internal/domain/models"
	"FXOptions/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constant(name string, v float64, err error, calls *int) Source {
	return value(name, func(context.Context) (float64, error) {
		*calls++
		return v, err
	})
}

func TestChain_FirstAcceptedValueWins(t *testing.T) {
	var a, b, c int
	chain := Chain{
		Field: "rate",
		Valid: within(0, 0.2),
		Sources: []Source{
			constant("down", 0, errors.New("timeout"), &a),
			constant("nan", math.NaN(), nil, &b),
			constant("ok", 0.03, nil, &c),
			constant("never", 0.04, nil, &c),
		},
		Fallback: &Fallback{Value: 0.01, Source: "default"},
	}
	m := &fakeMetrics{}

	f := chain.Resolve(context.Background(), logger.Nop(), m)
	require.True(t, f.Present())
	assert.Equal(t, 0.03, *f.Value)
	assert.Equal(t, "ok", f.Source)
	assert.False(t, f.FallbackToDefault)
	assert.Equal(t, []int{1, 1, 1}, []int{a, b, c})
	assert.Equal(t, []resolution{{"rate", resolvedLive}}, m.resolved)
}

func TestChain_ObservationSourceOverridesName(t *testing.T) {
	chain := Chain{Field: "vol", Sources: []Source{{
		Name: "SI=F",
		Fetch: func(context.Context) (Observation, error) {
			return Observation{Value: 0.2, Source: "SI=F (3mo, 15pts)"}, nil
		},
	}}}
	f := chain.Resolve(context.Background(), logger.Nop(), nil)
	assert.Equal(t, "SI=F (3mo, 15pts)", f.Source)
}

func TestChain_Exhausted(t *testing.T) {
	var n int
	sources := []Source{
		constant("inf", math.Inf(1), nil, &n),
		constant("too high", 0.5, nil, &n),
	}

	withDefault := Chain{Field: "rate", Sources: sources, Valid: within(0, 0.2), Fallback: &Fallback{Value: 0.025, Source: "default"}}
	f := withDefault.Resolve(context.Background(), logger.Nop(), nil)
	require.True(t, f.Present())
	assert.Equal(t, 0.025, *f.Value)
	assert.Equal(t, "default", f.Source)
	assert.True(t, f.FallbackToDefault)

	bare := Chain{Field: "spot", Sources: sources, Valid: positive}
	m := &fakeMetrics{}
	f = bare.Resolve(context.Background(), logger.Nop(), m)
	assert.False(t, f.Present())
	assert.Equal(t, models.NoSource, f.Source)
	assert.Equal(t, []resolution{{"spot", resolvedAbsent}}, m.resolved)
}

func TestChain_LogsEachFailedCandidate(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, zerolog.InfoLevel)
	var n int
	chain := Chain{Field: "spot", Valid: positive, Sources: []Source{
		constant("EURUSD=X", 0, errors.New("status 500"), &n),
		constant("1 / USDEUR=X", -1, nil, &n),
	}}

	chain.Resolve(context.Background(), log, nil)

	out := buf.String()
	assert.Contains(t, out, `"candidate":"EURUSD=X"`)
	assert.Contains(t, out, "status 500")
	assert.Contains(t, out, `"candidate":"1 / USDEUR=X"`)
	assert.Contains(t, out, "all sources failed")
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 27.777778, roundTo(30/1.08, 6))
	assert.Equal(t, 0.1905, roundTo(0.19054537, 4))
}
