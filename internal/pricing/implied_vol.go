package pricing

import (
	"errors"
	"fmt"
	"math"

	"FXOptions/internal/domain/models"
)

const (
	ivTolerance      = 1e-8
	newtonMaxIter    = 100
	bisectionMaxIter = 200
	vegaFloor        = 1e-12

	seedMin  = 0.01
	seedMax  = 5.0
	sigmaMin = 0.001
	sigmaMax = 10.0
)

// Solver methods reported in models.ImpliedVolResult.
const (
	MethodNewton    = "newton"
	MethodBisection = "bisection"
)

// ErrBoundsViolation is matched by every BoundsError via errors.Is.
var ErrBoundsViolation = errors.New("no-arbitrage bounds violation")

// Bound names the no-arbitrage limit a premium violated.
type Bound string

const (
	BoundBelowIntrinsic Bound = "below_intrinsic"
	BoundAboveCeiling   Bound = "above_arbitrage_ceiling"
)

// BoundsError reports a premium outside the model's no-arbitrage range.
type BoundsError struct {
	Bound   Bound
	Premium float64
	Limit   float64
}

func (e *BoundsError) Error() string {
	if e.Bound == BoundBelowIntrinsic {
		return fmt.Sprintf("market price is below intrinsic value (%.6g <= %.6g)", e.Premium, e.Limit)
	}
	return fmt.Sprintf("market price exceeds arbitrage upper bound (%.6g >= %.6g)", e.Premium, e.Limit)
}

func (e *BoundsError) Is(target error) bool { return target == ErrBoundsViolation }

// ArbitrageBounds returns the exclusive premium range within which an
// implied volatility exists for p. p.Volatility is ignored.
func ArbitrageBounds(p models.OptionParameters) (lower, upper float64) {
	fwdSpot := p.Spot * math.Exp(-p.RateForeign*p.Expiry)
	pvStrike := p.Strike * math.Exp(-p.RateDomestic*p.Expiry)
	if p.Kind == models.Call {
		return math.Max(fwdSpot-pvStrike, 0), fwdSpot
	}
	return math.Max(pvStrike-fwdSpot, 0), pvStrike
}

// ImpliedVol inverts the model against an observed per-unit premium using
// Newton-Raphson seeded by the Brenner-Subrahmanyam approximation, falling
// back to bisection when vega vanishes or Newton runs out of iterations.
//
// A value is always returned once the bounds hold. Converged is false only
// when bisection exhausted its budget and the last midpoint was returned.
func ImpliedVol(premium float64, p models.OptionParameters) (models.ImpliedVolResult, error) {
	if err := p.ValidateWithoutVolatility(); err != nil {
		return models.ImpliedVolResult{}, err
	}
	if p.Expiry <= 0 {
		return models.ImpliedVolResult{}, models.NewInputError("expiry", "cannot compute implied volatility at or past expiry")
	}
	if math.IsNaN(premium) || math.IsInf(premium, 0) {
		return models.ImpliedVolResult{}, models.NewInputError("market_premium", "premium must be finite")
	}

	lower, upper := ArbitrageBounds(p)
	if premium <= lower {
		return models.ImpliedVolResult{}, &BoundsError{Bound: BoundBelowIntrinsic, Premium: premium, Limit: lower}
	}
	if premium >= upper {
		return models.ImpliedVolResult{}, &BoundsError{Bound: BoundAboveCeiling, Premium: premium, Limit: upper}
	}

	S, K, T := p.Spot, p.Strike, p.Expiry
	rd, rf := p.RateDomestic, p.RateForeign
	res := models.ImpliedVolResult{PricePerUnitMarket: premium}

	sigma := clamp(math.Sqrt(2*math.Pi/T)*premium/S, seedMin, seedMax)
	for i := 1; i <= newtonMaxIter; i++ {
		diff := gkPrice(S, K, T, rd, rf, sigma, p.Kind) - premium
		if math.Abs(diff) < ivTolerance {
			res.Volatility, res.Method, res.Iterations, res.Converged = sigma, MethodNewton, i, true
			return res, nil
		}
		vega := rawVega(S, K, T, rd, rf, sigma)
		if vega < vegaFloor {
			break
		}
		sigma = clamp(sigma-diff/vega, sigmaMin, sigmaMax)
	}

	lo, hi := sigmaMin, sigmaMax
	var mid float64
	for i := 1; i <= bisectionMaxIter; i++ {
		mid = (lo + hi) / 2
		model := gkPrice(S, K, T, rd, rf, mid, p.Kind)
		if math.Abs(model-premium) < ivTolerance {
			res.Volatility, res.Method, res.Iterations, res.Converged = mid, MethodBisection, i, true
			return res, nil
		}
		if model > premium {
			hi = mid
		} else {
			lo = mid
		}
	}
	res.Volatility, res.Method, res.Iterations = mid, MethodBisection, bisectionMaxIter
	return res, nil
}

func clamp(x, lo, hi float64) float64 {
	return math.Min(math.Max(x, lo), hi)
}
