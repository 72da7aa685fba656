package domain

import "math"

// TrueEffect is the mean of the individual treatment effect built into the
// data generating process (Y1 - Y0 ~ Normal(2, 1)). Bias figures are
// reported against it.
const TrueEffect = 2.0

// TrialResult holds the three statistics extracted from one simulated
// dataset. Immutable once computed.
type TrialResult struct {
	Cov           float64 // sample covariance between X and Z
	UnadjustedATE float64 // OLS slope of Y on Z
	AdjustedATE   float64 // OLS coefficient on Z from Y on Z and X
}

// ResultCollection is the ordered sequence of trial results produced by one
// study run. Order reflects trial index and matters only for reproducibility
// of output, not for any statistical conclusion.
type ResultCollection []TrialResult

// Summary holds aggregate statistics across a result collection.
// All derivations are zero-safe: an empty collection yields zeros.
type Summary struct {
	Trials         int
	MeanCov        float64
	MeanUnadjusted float64
	MeanAdjusted   float64
	SDUnadjusted   float64
	SDAdjusted     float64
	BiasUnadjusted float64
	BiasAdjusted   float64
}

// Summarize computes means, spreads, and bias against the true effect.
func (rc ResultCollection) Summarize() Summary {
	s := Summary{Trials: len(rc)}
	if len(rc) == 0 {
		return s
	}

	n := float64(len(rc))
	for _, r := range rc {
		s.MeanCov += r.Cov
		s.MeanUnadjusted += r.UnadjustedATE
		s.MeanAdjusted += r.AdjustedATE
	}
	s.MeanCov /= n
	s.MeanUnadjusted /= n
	s.MeanAdjusted /= n

	if len(rc) > 1 {
		var su, sa float64
		for _, r := range rc {
			du := r.UnadjustedATE - s.MeanUnadjusted
			da := r.AdjustedATE - s.MeanAdjusted
			su += du * du
			sa += da * da
		}
		s.SDUnadjusted = math.Sqrt(su / (n - 1))
		s.SDAdjusted = math.Sqrt(sa / (n - 1))
	}

	s.BiasUnadjusted = s.MeanUnadjusted - TrueEffect
	s.BiasAdjusted = s.MeanAdjusted - TrueEffect
	return s
}
