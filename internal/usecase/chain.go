package usecase

import (
	"context"
	"math"

	"FXOptions/internal/domain/models"
	"FXOptions/internal/domain/repository"
	"FXOptions/pkg/logger"
)

// Resolution kinds recorded per field.
const (
	resolvedLive    = "live"
	resolvedDefault = "default"
	resolvedAbsent  = "absent"
)

// Observation is a value read from one source. An empty Source means the
// candidate's Name is the provenance.
type Observation struct {
	Value  float64
	Source string
}

// Source is one candidate in a fallback chain.
type Source struct {
	Name  string
	Fetch func(ctx context.Context) (Observation, error)
}

// Fallback is the static value a chain settles on when every source fails.
type Fallback struct {
	Value  float64
	Source string
}

// Chain is an ordered list of sources for one market fact. Sources are
// tried in order; the first finite value accepted by Valid wins.
type Chain struct {
	Field    string
	Sources  []Source
	Valid    func(float64) bool // nil accepts any finite value
	Fallback *Fallback
}

// Resolve walks the chain. It never fails: an exhausted chain yields the
// fallback, or an absent field when there is none.
func (c Chain) Resolve(ctx context.Context, log *logger.Logger, m repository.Metrics) models.MarketField {
	for _, src := range c.Sources {
		if ctx.Err() != nil {
			break
		}
		obs, err := src.Fetch(ctx)
		if err != nil {
			log.Info("source unavailable, trying next",
				logger.String("field", c.Field),
				logger.String("candidate", src.Name),
				logger.Error(err),
			)
			continue
		}
		if math.IsNaN(obs.Value) || math.IsInf(obs.Value, 0) || (c.Valid != nil && !c.Valid(obs.Value)) {
			log.Info("source value rejected, trying next",
				logger.String("field", c.Field),
				logger.String("candidate", src.Name),
				logger.Float64("value", obs.Value),
			)
			continue
		}
		provenance := obs.Source
		if provenance == "" {
			provenance = src.Name
		}
		record(m, c.Field, resolvedLive)
		return models.Resolved(obs.Value, provenance)
	}

	if c.Fallback != nil {
		log.Info("all sources failed, using default",
			logger.String("field", c.Field),
			logger.Float64("value", c.Fallback.Value),
		)
		record(m, c.Field, resolvedDefault)
		return models.Defaulted(c.Fallback.Value, c.Fallback.Source)
	}
	log.Warn("all sources failed", logger.String("field", c.Field))
	record(m, c.Field, resolvedAbsent)
	return models.Absent(models.NoSource)
}

func record(m repository.Metrics, field, kind string) {
	if m != nil {
		m.RecordResolved(field, kind)
	}
}

// value lifts a plain fetch into a chain source.
func value(name string, fetch func(ctx context.Context) (float64, error)) Source {
	return Source{
		Name: name,
		Fetch: func(ctx context.Context) (Observation, error) {
			v, err := fetch(ctx)
			return Observation{Value: v}, err
		},
	}
}

// within returns a validity predicate for the closed interval [lo, hi].
func within(lo, hi float64) func(float64) bool {
	return func(v float64) bool { return v >= lo && v <= hi }
}

func positive(v float64) bool { return v > 0 }

func roundTo(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
