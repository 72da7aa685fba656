package sim

import (
	"errors"
	"math"
	"testing"

	"covarsim/internal/domain"
)

func TestAnalyze_ExactFit(t *testing.T) {
	// Y = 10 + X + 2Z with no noise. The adjusted fit recovers the
	// coefficients exactly; the unadjusted slope picks up the covariate
	// imbalance on top of the true effect.
	ds := domain.Dataset{
		{Z: 0, X: 0, Y: 10},
		{Z: 0, X: 1, Y: 11},
		{Z: 1, X: 0, Y: 12},
		{Z: 1, X: 1, Y: 13},
		{Z: 0, X: 0, Y: 10},
		{Z: 1, X: 1, Y: 13},
	}

	r, err := Analyze(ds)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(r.AdjustedATE-2.0) > 1e-8 {
		t.Errorf("AdjustedATE = %v, want 2.0", r.AdjustedATE)
	}
	// Arm means: treated (12+13+13)/3, control (10+11+10)/3.
	if want := 38.0/3 - 31.0/3; math.Abs(r.UnadjustedATE-want) > 1e-8 {
		t.Errorf("UnadjustedATE = %v, want %v", r.UnadjustedATE, want)
	}
	if math.Abs(r.Cov-0.1) > 1e-8 {
		t.Errorf("Cov = %v, want 0.1", r.Cov)
	}
}

func TestAnalyze_BalancedDesign(t *testing.T) {
	// Exactly balanced X across arms: covariance is zero and both
	// estimators agree.
	ds := domain.Dataset{
		{Z: 1, X: 1, Y: 12},
		{Z: 1, X: 0, Y: 14},
		{Z: 0, X: 1, Y: 10},
		{Z: 0, X: 0, Y: 11},
	}

	r, err := Analyze(ds)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(r.Cov) > 1e-9 {
		t.Errorf("Cov = %v, want 0", r.Cov)
	}
	if math.Abs(r.UnadjustedATE-2.5) > 1e-8 {
		t.Errorf("UnadjustedATE = %v, want 2.5", r.UnadjustedATE)
	}
	if math.Abs(r.AdjustedATE-2.5) > 1e-8 {
		t.Errorf("AdjustedATE = %v, want 2.5", r.AdjustedATE)
	}
}

func TestAnalyze_DegenerateDesigns(t *testing.T) {
	tests := []struct {
		name string
		ds   domain.Dataset
	}{
		{
			name: "all treated",
			ds:   domain.Dataset{{Z: 1, X: 0, Y: 12}, {Z: 1, X: 1, Y: 13}, {Z: 1, X: 0, Y: 12.5}},
		},
		{
			name: "all control",
			ds:   domain.Dataset{{Z: 0, X: 0, Y: 10}, {Z: 0, X: 1, Y: 11}, {Z: 0, X: 0, Y: 10.5}},
		},
		{
			name: "constant covariate",
			ds:   domain.Dataset{{Z: 0, X: 1, Y: 11}, {Z: 1, X: 1, Y: 13}, {Z: 0, X: 1, Y: 11.2}},
		},
		{
			name: "covariate equals treatment",
			ds:   domain.Dataset{{Z: 0, X: 0, Y: 10}, {Z: 1, X: 1, Y: 13}, {Z: 0, X: 0, Y: 10.4}},
		},
		{
			name: "covariate complements treatment",
			ds:   domain.Dataset{{Z: 0, X: 1, Y: 11}, {Z: 1, X: 0, Y: 12}, {Z: 1, X: 0, Y: 12.4}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Analyze(tt.ds)
			var degen *domain.DegenerateRegressionError
			if !errors.As(err, &degen) {
				t.Fatalf("error = %v, want DegenerateRegressionError", err)
			}
		})
	}
}

func TestAnalyze_TooFewUnits(t *testing.T) {
	_, err := Analyze(domain.Dataset{{Z: 1, X: 0, Y: 12}})
	if !errors.Is(err, domain.ErrInvalidParameter) {
		t.Errorf("error = %v, want ErrInvalidParameter", err)
	}
}

func TestAnalyze_ConvergesOnLargeSample(t *testing.T) {
	// With independent assignment and a large sample, both estimators land
	// near the true effect and the covariance near zero.
	ds, err := NewGenerator(3, 0).Generate(20000, domain.ModeIndependent)
	if err != nil {
		t.Fatal(err)
	}

	r, err := Analyze(ds)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(r.Cov) > 0.02 {
		t.Errorf("Cov = %v, want about 0", r.Cov)
	}
	if math.Abs(r.UnadjustedATE-domain.TrueEffect) > 0.1 {
		t.Errorf("UnadjustedATE = %v, want about %v", r.UnadjustedATE, domain.TrueEffect)
	}
	if math.Abs(r.AdjustedATE-domain.TrueEffect) > 0.1 {
		t.Errorf("AdjustedATE = %v, want about %v", r.AdjustedATE, domain.TrueEffect)
	}
	if math.Abs(r.UnadjustedATE-r.AdjustedATE) > 0.1 {
		t.Errorf("estimators diverge: unadjusted %v vs adjusted %v", r.UnadjustedATE, r.AdjustedATE)
	}
}

func TestAnalyze_AlwaysFiniteOnValidDesign(t *testing.T) {
	gen := NewGenerator(19, 0)
	for i := 0; i < 50; i++ {
		ds, err := gen.Generate(30, domain.ModeIndependent)
		if err != nil {
			t.Fatal(err)
		}
		r, err := Analyze(ds)
		if err != nil {
			var degen *domain.DegenerateRegressionError
			if errors.As(err, &degen) {
				continue // legitimate degenerate draw, nothing to assert
			}
			t.Fatal(err)
		}
		for _, v := range []float64{r.Cov, r.UnadjustedATE, r.AdjustedATE} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("non-finite statistic in %+v", r)
			}
		}
	}
}
