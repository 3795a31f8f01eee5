package volatility

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Options controls the historical volatility estimate.
type Options struct {
	MinRawPoints     int     // closes required before computing returns
	MinReturns       int     // returns that must survive the outlier filter
	OutlierThreshold float64 // |log return| at or above this is discarded
	PeriodsPerYear   float64 // annualization factor (252 trading days)
}

// DefaultOptions returns the daily-close settings.
func DefaultOptions() Options {
	return Options{
		MinRawPoints:     15,
		MinReturns:       10,
		OutlierThreshold: 0.10,
		PeriodsPerYear:   252,
	}
}

// Estimate is an annualized volatility with the sample that produced it.
type Estimate struct {
	Sigma    float64
	Points   int // returns used
	Outliers int // returns discarded
}

// ComputeLogReturns computes log returns r_t = ln(C_t / C_{t-1}).
// Non-positive closes cannot be logged, so pairs touching them are skipped.
// It returns nil if fewer than two closes are supplied.
func ComputeLogReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		cur := closes[i]
		if prev <= 0 || cur <= 0 {
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// FilterOutliers drops returns whose magnitude reaches threshold
// (futures roll gaps) and reports how many were removed.
func FilterOutliers(returns []float64, threshold float64) ([]float64, int) {
	kept := make([]float64, 0, len(returns))
	for _, r := range returns {
		if math.Abs(r) < threshold {
			kept = append(kept, r)
		}
	}
	return kept, len(returns) - len(kept)
}

// Historical computes the annualized sample standard deviation of filtered
// daily log returns. The error explains why no estimate could be produced;
// callers treat it as an absent value.
func Historical(closes []float64, opts Options) (Estimate, error) {
	if len(closes) < opts.MinRawPoints {
		return Estimate{}, fmt.Errorf("insufficient history: %d points, need %d", len(closes), opts.MinRawPoints)
	}
	filtered, removed := FilterOutliers(ComputeLogReturns(closes), opts.OutlierThreshold)
	if len(filtered) < opts.MinReturns || len(filtered) < 2 {
		return Estimate{}, fmt.Errorf("too few points after filtering: %d, need %d", len(filtered), opts.MinReturns)
	}
	// stat.StdDev is the unbiased (n-1) estimator.
	sigma := stat.StdDev(filtered, nil) * math.Sqrt(opts.PeriodsPerYear)
	return Estimate{Sigma: sigma, Points: len(filtered), Outliers: removed}, nil
}
