// Package pricing implements the Garman-Kohlhagen model for European vanilla
// options on FX pairs and precious metals: premium, Greeks and implied
// volatility. All functions are pure and safe for concurrent use.
package pricing

import (
	"math"

	"FXOptions/internal/domain/models"

	"gonum.org/v1/gonum/stat/distuv"
)

// Greek scaling conventions relied on by every consumer of models.Greeks.
const (
	vegaScale  = 100 // per vol point
	rhoScale   = 100 // per rate point
	thetaScale = 365 // per calendar day
)

// Price returns the premium per unit of notional (domestic per 1 foreign).
func Price(p models.OptionParameters) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	return gkPrice(p.Spot, p.Strike, p.Expiry, p.RateDomestic, p.RateForeign, p.Volatility, p.Kind), nil
}

// Greeks returns per-unit sensitivities. At expiry delta is +/-1 when in the
// money and every other Greek is zero.
func Greeks(p models.OptionParameters) (models.Greeks, error) {
	if err := p.Validate(); err != nil {
		return models.Greeks{}, err
	}
	S, K, T := p.Spot, p.Strike, p.Expiry
	rd, rf, sigma := p.RateDomestic, p.RateForeign, p.Volatility

	if T <= 0 {
		var delta float64
		switch {
		case p.Kind == models.Call && S > K:
			delta = 1
		case p.Kind == models.Put && S < K:
			delta = -1
		}
		return models.Greeks{Delta: delta}, nil
	}

	sqrtT := math.Sqrt(T)
	expRf := math.Exp(-rf * T)
	expRd := math.Exp(-rd * T)

	// nd1 is the density at d1; Nd1/Nd2 the probabilities for the option side.
	var nd1, Nd1, Nd2, gamma float64
	if sigma > 0 {
		d1, d2 := d1d2(S, K, T, rd, rf, sigma)
		nd1 = distuv.UnitNormal.Prob(d1)
		if p.Kind == models.Call {
			Nd1, Nd2 = distuv.UnitNormal.CDF(d1), distuv.UnitNormal.CDF(d2)
		} else {
			Nd1, Nd2 = distuv.UnitNormal.CDF(-d1), distuv.UnitNormal.CDF(-d2)
		}
		gamma = expRf * nd1 / (S * sigma * sqrtT)
	} else if forwardInTheMoney(S*expRf, K*expRd, p.Kind) {
		// zero volatility: the option is a discounted forward or worthless
		Nd1, Nd2 = 1, 1
	}

	vega := S * expRf * nd1 * sqrtT
	decay := -(S * sigma * expRf * nd1) / (2 * sqrtT)

	var g models.Greeks
	if p.Kind == models.Call {
		g.Delta = expRf * Nd1
		g.Theta = decay + rf*S*expRf*Nd1 - rd*K*expRd*Nd2
		g.RhoDomestic = K * T * expRd * Nd2
		g.RhoForeign = -S * T * expRf * Nd1
	} else {
		g.Delta = -expRf * Nd1
		g.Theta = decay - rf*S*expRf*Nd1 + rd*K*expRd*Nd2
		g.RhoDomestic = -K * T * expRd * Nd2
		g.RhoForeign = S * T * expRf * Nd1
	}
	g.Gamma = gamma
	g.Vega = vega / vegaScale
	g.Theta /= thetaScale
	g.RhoDomestic /= rhoScale
	g.RhoForeign /= rhoScale
	return g, nil
}

// D1D2 returns the standardized moneyness terms. ok is false at expiry or
// with zero volatility where they are undefined.
func D1D2(p models.OptionParameters) (d1, d2 float64, ok bool) {
	if p.Expiry <= 0 || p.Volatility <= 0 || p.Spot <= 0 || p.Strike <= 0 {
		return 0, 0, false
	}
	d1, d2 = d1d2(p.Spot, p.Strike, p.Expiry, p.RateDomestic, p.RateForeign, p.Volatility)
	return d1, d2, true
}

func d1d2(S, K, T, rd, rf, sigma float64) (float64, float64) {
	sigmaSqrtT := sigma * math.Sqrt(T)
	d1 := (math.Log(S/K) + (rd-rf+0.5*sigma*sigma)*T) / sigmaSqrtT
	return d1, d1 - sigmaSqrtT
}

// gkPrice is the unchecked closed form. Inputs are assumed validated.
func gkPrice(S, K, T, rd, rf, sigma float64, kind models.OptionKind) float64 {
	if T <= 0 {
		return intrinsic(S, K, kind)
	}
	fwdSpot := S * math.Exp(-rf*T)
	pvStrike := K * math.Exp(-rd*T)
	if sigma <= 0 {
		return intrinsic(fwdSpot, pvStrike, kind)
	}
	d1, d2 := d1d2(S, K, T, rd, rf, sigma)
	if kind == models.Call {
		return fwdSpot*distuv.UnitNormal.CDF(d1) - pvStrike*distuv.UnitNormal.CDF(d2)
	}
	return pvStrike*distuv.UnitNormal.CDF(-d2) - fwdSpot*distuv.UnitNormal.CDF(-d1)
}

// rawVega is dPrice/dSigma per one unit of sigma, identical for calls and puts.
func rawVega(S, K, T, rd, rf, sigma float64) float64 {
	d1, _ := d1d2(S, K, T, rd, rf, sigma)
	return S * math.Exp(-rf*T) * distuv.UnitNormal.Prob(d1) * math.Sqrt(T)
}

func intrinsic(S, K float64, kind models.OptionKind) float64 {
	if kind == models.Call {
		return math.Max(S-K, 0)
	}
	return math.Max(K-S, 0)
}

func forwardInTheMoney(fwdSpot, pvStrike float64, kind models.OptionKind) bool {
	if kind == models.Call {
		return fwdSpot > pvStrike
	}
	return pvStrike > fwdSpot
}
