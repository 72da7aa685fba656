package domain

import "time"

// Run is the metadata of one completed study run, the unit of persistence
// and listing.
type Run struct {
	ID         string
	Params     Params
	StartedAt  time.Time
	FinishedAt time.Time
	Retries    int // degenerate trials redrawn during the run
	Summary    Summary
}
