// Package ports defines the interfaces between the study core and its
// adapters (persistence, telemetry).
package ports

import (
	"context"

	"covarsim/internal/domain"
)

// RunRepository persists study runs and their per-trial results.
type RunRepository interface {
	// SaveRun stores the run metadata together with its trial results.
	SaveRun(ctx context.Context, run *domain.Run, results domain.ResultCollection) error
	// GetRun returns a run by ID, or nil when it does not exist.
	GetRun(ctx context.Context, id string) (*domain.Run, error)
	// ListRuns returns all stored runs, most recent first.
	ListRuns(ctx context.Context) ([]*domain.Run, error)
	// GetTrials returns the trial results of a run in trial order.
	GetTrials(ctx context.Context, runID string) (domain.ResultCollection, error)
}
