package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"FXOptions/internal/domain/models"
	"FXOptions/internal/pricing"
	"FXOptions/pkg/logger"
	"FXOptions/pkg/util"
)

// ReferenceVolConfig selects and filters listed options used as an implied
// volatility reference.
type ReferenceVolConfig struct {
	Underlyings   map[string]string // base code -> listed underlying, e.g. XAG -> SLV
	AssumedRate   float64           // domestic rate used to invert listed calls
	MoneynessBand float64           // max |K-S|/S
	MinLastPrice  float64           // calls must trade strictly above this
	MinVol        float64           // exclusive lower bound on accepted vols
	MaxVol        float64           // exclusive upper bound on accepted vols
}

const daysPerYear = 365.0

// referenceVol picks the listed expiry closest to the requested tenor and
// takes the median implied volatility of near-the-money calls.
func (a *MarketDataAggregator) referenceVol(ctx context.Context, log *logger.Logger, underlying string, tenor float64) *models.ReferenceVol {
	rv := &models.ReferenceVol{MarketField: models.Absent(models.NoSource), Underlying: underlying}
	absent := func(reason string, fields ...logger.Field) *models.ReferenceVol {
		log.Info("reference vol unavailable: "+reason, append(fields, logger.String("underlying", underlying))...)
		record(a.metrics, FieldReferenceVol, resolvedAbsent)
		return rv
	}

	first, err := a.chains.OptionChain(ctx, underlying, nil)
	if err != nil {
		return absent("options chain", logger.Error(err))
	}
	if len(first.Expirations) == 0 {
		return absent("no expirations")
	}

	today := util.Today(a.now())
	target := today.AddDate(0, 0, int(tenor*daysPerYear))
	expiry := closestExpiry(first.Expirations, target)
	days := int(util.Today(expiry).Sub(today).Hours() / 24)
	T := float64(days) / daysPerYear
	if T <= 0 {
		return absent("selected expiry is not in the future", logger.String("expiry", util.FormatDate(expiry)))
	}

	chain := first
	if !util.Today(first.Expiry).Equal(util.Today(expiry)) {
		if chain, err = a.chains.OptionChain(ctx, underlying, &expiry); err != nil {
			return absent("options chain for expiry", logger.Error(err))
		}
	}

	spot := first.UnderlyingPrice
	cfg := a.cfg.ReferenceVol
	var vols []float64
	for _, q := range chain.Calls {
		if q.LastPrice <= cfg.MinLastPrice {
			continue
		}
		if math.Abs(q.Strike-spot)/spot > cfg.MoneynessBand {
			continue
		}
		res, err := pricing.ImpliedVol(q.LastPrice, models.OptionParameters{
			Spot:         spot,
			Strike:       q.Strike,
			RateDomestic: cfg.AssumedRate,
			Expiry:       T,
			Kind:         models.Call,
			Notional:     1,
		})
		if err != nil || !res.Converged {
			continue
		}
		if v := res.Volatility; !math.IsNaN(v) && v > cfg.MinVol && v < cfg.MaxVol {
			vols = append(vols, v)
		}
	}
	if len(vols) == 0 {
		return absent("no qualifying quotes", logger.Int("calls", len(chain.Calls)))
	}

	iv := median(vols)
	expiryStr := util.FormatDate(expiry)
	rv.MarketField = models.Resolved(iv, fmt.Sprintf("%s options (%s, %d ATM strikes, T=%.2fy)", underlying, expiryStr, len(vols), T))
	rv.UnderlyingPrice = &spot
	rv.Expiry = expiryStr
	rv.Strikes = len(vols)
	record(a.metrics, FieldReferenceVol, resolvedLive)
	log.Info("reference vol resolved", logger.String("source", rv.Source), logger.Float64("iv", iv))
	return rv
}

// closestExpiry returns the expiration nearest target in whole days; the
// earliest listed wins ties.
func closestExpiry(expirations []time.Time, target time.Time) time.Time {
	best := expirations[0]
	bestDiff := math.MaxInt
	for _, e := range expirations {
		diff := int(util.Today(e).Sub(target).Hours() / 24)
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			best, bestDiff = e, diff
		}
	}
	return best
}

func median(xs []float64) float64 {
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
