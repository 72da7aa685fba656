package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"covarsim/internal/domain"
)

// Analyze extracts the trial statistics from one dataset: the sample
// covariance between covariate and treatment, the unadjusted ATE (OLS slope
// of Y on Z, equivalent to the difference in arm means), and the adjusted
// ATE (coefficient on Z from the joint fit of Y on Z and X).
//
// Designs without usable variation fail with DegenerateRegressionError
// rather than returning NaN coefficients: both treatment arms must be
// present, and the adjusted fit additionally needs covariate variation
// that is not collinear with the treatment. At the small dataset sizes
// this study uses, a single-arm or constant-covariate draw is a real
// possibility.
func Analyze(ds domain.Dataset) (domain.TrialResult, error) {
	n := len(ds)
	if n < 2 {
		return domain.TrialResult{}, fmt.Errorf("cannot regress on %d units: %w", n, domain.ErrInvalidParameter)
	}

	treated, control := ds.ArmCounts()
	if treated == 0 || control == 0 {
		return domain.TrialResult{}, &domain.DegenerateRegressionError{
			Treated: treated, Control: control, Reason: "treatment has zero variance",
		}
	}
	if err := checkAdjustedRank(ds, treated, control); err != nil {
		return domain.TrialResult{}, err
	}

	z := make([]float64, n)
	x := make([]float64, n)
	y := make([]float64, n)
	for i, u := range ds {
		z[i] = float64(u.Z)
		x[i] = float64(u.X)
		y[i] = u.Y
	}

	cov := stat.Covariance(x, z, nil)
	_, unadjusted := stat.LinearRegression(z, y, nil, false)

	adjusted, err := solveAdjusted(z, x, y)
	if err != nil {
		return domain.TrialResult{}, err
	}

	r := domain.TrialResult{Cov: cov, UnadjustedATE: unadjusted, AdjustedATE: adjusted}
	for _, v := range []float64{r.Cov, r.UnadjustedATE, r.AdjustedATE} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return domain.TrialResult{}, &domain.DegenerateRegressionError{
				Treated: treated, Control: control, Reason: "non-finite estimate",
			}
		}
	}
	return r, nil
}

// checkAdjustedRank rejects designs where the joint fit of Y on Z and X is
// rank deficient: a constant covariate collapses into the intercept, and a
// covariate identical (or complementary) to the treatment leaves no
// independent variation to adjust for.
func checkAdjustedRank(ds domain.Dataset, treated, control int) error {
	xOnes := 0
	sameAll, complementAll := true, true
	for _, u := range ds {
		xOnes += u.X
		if u.X != u.Z {
			sameAll = false
		}
		if u.X != 1-u.Z {
			complementAll = false
		}
	}
	if xOnes == 0 || xOnes == len(ds) {
		return &domain.DegenerateRegressionError{
			Treated: treated, Control: control, Reason: "covariate has zero variance",
		}
	}
	if sameAll || complementAll {
		return &domain.DegenerateRegressionError{
			Treated: treated, Control: control, Reason: "covariate collinear with treatment",
		}
	}
	return nil
}

// solveAdjusted fits Y = b0 + b1*Z + b2*X by QR least squares and returns b1.
func solveAdjusted(z, x, y []float64) (float64, error) {
	n := len(y)
	design := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		design.Set(i, 0, 1)
		design.Set(i, 1, z[i])
		design.Set(i, 2, x[i])
	}

	var qr mat.QR
	qr.Factorize(design)

	var beta mat.Dense
	if err := qr.SolveTo(&beta, false, mat.NewVecDense(n, y)); err != nil {
		treated := 0
		for _, v := range z {
			treated += int(v)
		}
		return 0, &domain.DegenerateRegressionError{
			Treated: treated, Control: n - treated, Reason: "rank-deficient design",
		}
	}
	return beta.At(1, 0), nil
}
