package port

import (
	"errors"

	"semsim/internal/domain"
)

// ErrRunNotFound is returned for IDs that name no recorded run.
var ErrRunNotFound = errors.New("run not found")

// RunStore records finished runs for later inspection.
type RunStore interface {
	// PutRun stores a run. Runs with an empty ID are assigned one.
	PutRun(run *domain.Run) error

	GetRun(id string) (domain.Run, error)

	// ListRuns returns up to limit runs, newest first. A limit <= 0 returns all.
	ListRuns(kind domain.RunKind, limit int) ([]domain.Run, error)

	DeleteRun(id string) error

	// Clear removes every run.
	Clear() error

	Close() error
}
