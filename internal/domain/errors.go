package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter is returned when a simulation parameter is out of
// range. Callers wrap it with detail: fmt.Errorf("units: %w", ErrInvalidParameter).
var ErrInvalidParameter = errors.New("invalid parameter")

// DegenerateRegressionError indicates that a trial's design matrix has no
// usable variation, so the OLS slope is undefined. This is distinct from a
// numerically unstable but defined fit: it is raised instead of returning
// NaN coefficients.
type DegenerateRegressionError struct {
	Treated int
	Control int
	Reason  string
}

func (e *DegenerateRegressionError) Error() string {
	return fmt.Sprintf("degenerate regression (%s): %d treated, %d control", e.Reason, e.Treated, e.Control)
}
