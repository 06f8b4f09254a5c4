// Package state persists simulation run history in a project-local
// SQLite database.
package state

import "time"

// RunStatus is the lifecycle state of a recorded run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one recorded simulation run.
type Run struct {
	ID          string
	Module      string
	Seed        uint64
	Status      RunStatus
	Steps       int64
	Spikes      int64
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

// Store is the run-history persistence interface.
type Store interface {
	Open(path string) error
	Close() error
	InitSchema() error

	CreateRun(module string, seed uint64) (*Run, error)
	CompleteRun(id string, status RunStatus, steps, spikes int64, errMsg string) error
	GetRun(id string) (*Run, error)
	ListRuns(limit int) ([]*Run, error)
}
