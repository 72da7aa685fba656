package domain

import "fmt"

// AssignmentMode selects the treatment assignment mechanism.
type AssignmentMode string

const (
	// ModeIndependent assigns treatment by a fair coin, independent of the
	// covariate. Any covariate imbalance is pure sampling noise.
	ModeIndependent AssignmentMode = "independent"
	// ModeBiased assigns treatment with probability dependent on the
	// covariate, inducing systematic imbalance. Direction and magnitude are
	// controlled by Params.BiasStrength.
	ModeBiased AssignmentMode = "biased"
)

// ParseMode validates a mode string.
func ParseMode(s string) (AssignmentMode, error) {
	switch AssignmentMode(s) {
	case ModeIndependent, ModeBiased:
		return AssignmentMode(s), nil
	default:
		return "", fmt.Errorf("assignment mode %q: %w", s, ErrInvalidParameter)
	}
}

// Params holds the full configuration of one study run.
type Params struct {
	Units        int            // units per trial dataset
	Trials       int            // number of simulated trials
	Mode         AssignmentMode // treatment assignment mechanism
	Seed         uint64         // random stream seed
	BiasStrength float64        // in [-1, 1]; only used by ModeBiased
}

// Validate rejects out-of-range parameters up front rather than coercing.
func (p Params) Validate() error {
	if p.Units < 2 {
		return fmt.Errorf("units must be >= 2, got %d: %w", p.Units, ErrInvalidParameter)
	}
	if p.Trials <= 0 {
		return fmt.Errorf("trials must be positive, got %d: %w", p.Trials, ErrInvalidParameter)
	}
	if _, err := ParseMode(string(p.Mode)); err != nil {
		return err
	}
	if p.BiasStrength < -1 || p.BiasStrength > 1 {
		return fmt.Errorf("bias strength must be in [-1, 1], got %g: %w", p.BiasStrength, ErrInvalidParameter)
	}
	return nil
}
