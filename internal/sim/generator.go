// Package sim implements the Monte Carlo study: synthetic dataset
// generation, treatment-effect estimation, and the trial loop that ties
// them together.
package sim

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"covarsim/internal/domain"
)

// Generator draws synthetic datasets from the study's data generating
// process:
//
//	X  ~ Bernoulli(0.5)
//	Z  ~ Bernoulli(0.5)                    (independent mode)
//	Z  ~ Bernoulli(0.5 + s*(2X-1)/2)       (biased mode, strength s)
//	Y0 = 10 + X + Uniform(0, 2)
//	Y1 = Y0 + Normal(2, 1)
//	Y  = Y1 if Z=1 else Y0
//
// The potential outcomes Y0 and Y1 never leave this package: the returned
// dataset carries only the realized (Z, X, Y) triple per unit.
type Generator struct {
	src          rand.Source
	biasStrength float64
	baseline     distuv.Uniform // additive noise on Y0
	effect       distuv.Normal  // individual treatment effect
}

// NewGenerator creates a generator over a deterministic stream. The same
// seed always yields the same sequence of datasets.
func NewGenerator(seed uint64, biasStrength float64) *Generator {
	src := rand.NewSource(seed)
	return &Generator{
		src:          src,
		biasStrength: biasStrength,
		baseline:     distuv.Uniform{Min: 0, Max: 2, Src: src},
		effect:       distuv.Normal{Mu: domain.TrueEffect, Sigma: 1, Src: src},
	}
}

// Generate produces one dataset of n units under the given assignment mode.
// Both potential outcomes are drawn for every unit regardless of assignment,
// so stream consumption does not depend on the realized Z sequence.
func (g *Generator) Generate(n int, mode domain.AssignmentMode) (domain.Dataset, error) {
	if n < 2 {
		return nil, fmt.Errorf("dataset size must be >= 2, got %d: %w", n, domain.ErrInvalidParameter)
	}
	if _, err := domain.ParseMode(string(mode)); err != nil {
		return nil, err
	}

	ds := make(domain.Dataset, n)
	for i := range ds {
		x := int(distuv.Bernoulli{P: 0.5, Src: g.src}.Rand())

		pz := 0.5
		if mode == domain.ModeBiased {
			pz = treatmentProbability(x, g.biasStrength)
		}
		z := int(distuv.Bernoulli{P: pz, Src: g.src}.Rand())

		y0 := 10 + float64(x) + g.baseline.Rand()
		y1 := y0 + g.effect.Rand()

		y := y0
		if z == 1 {
			y = y1
		}
		ds[i] = domain.Unit{Z: z, X: x, Y: y}
	}
	return ds, nil
}

// treatmentProbability maps the covariate to P(Z=1 | X=x) under the biased
// mechanism: 0.5 + s*(2x-1)/2, clamped to [0, 1]. Strength 0 reduces to a
// fair coin; positive s makes X=1 units more likely to be treated, inducing
// positive Cov(X, Z); negative s reverses the direction.
func treatmentProbability(x int, s float64) float64 {
	p := 0.5 + s*float64(2*x-1)/2
	return math.Min(1, math.Max(0, p))
}
