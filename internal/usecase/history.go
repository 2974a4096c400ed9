package usecase

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"semsim/internal/domain"
	"semsim/internal/port"
)

// ErrHistoryDisabled is returned when reading history with recording off.
var ErrHistoryDisabled = errors.New("history is disabled")

// HistoryUseCase records and lists past runs. A nil store disables
// recording; Record then succeeds without doing anything.
type HistoryUseCase struct {
	store  port.RunStore
	logger zerolog.Logger
}

// NewHistoryUseCase creates a new history use case.
func NewHistoryUseCase(store port.RunStore, logger zerolog.Logger) *HistoryUseCase {
	return &HistoryUseCase{store: store, logger: logger}
}

// Enabled reports whether runs are recorded.
func (u *HistoryUseCase) Enabled() bool {
	return u != nil && u.store != nil
}

// Record stores a run with payload encoded as JSON and returns its ID.
func (u *HistoryUseCase) Record(kind domain.RunKind, model, summary string, payload any) (string, error) {
	if !u.Enabled() {
		return "", nil
	}

	var data []byte
	var err error
	if tr, ok := payload.(domain.TaskResult); ok {
		data, err = domain.MarshalTaskResult(tr)
	} else {
		data, err = json.Marshal(payload)
	}
	if err != nil {
		return "", fmt.Errorf("failed to encode %s run: %w", kind, err)
	}

	run := &domain.Run{Kind: kind, Model: model, Summary: summary, Payload: data}
	if err := u.store.PutRun(run); err != nil {
		return "", fmt.Errorf("failed to record %s run: %w", kind, err)
	}

	u.logger.Debug().Str("id", run.ID).Str("kind", string(kind)).Msg("recorded run")
	return run.ID, nil
}

// TryRecord is Record for callers that must not fail because history did.
// A failure is logged as a warning and the returned ID is empty.
func (u *HistoryUseCase) TryRecord(kind domain.RunKind, model, summary string, payload any) string {
	id, err := u.Record(kind, model, summary, payload)
	if err != nil {
		u.logger.Warn().Err(err).Str("kind", string(kind)).Msg("run not recorded")
		return ""
	}
	return id
}

// List returns up to limit runs of kind, newest first. An empty kind
// matches every run.
func (u *HistoryUseCase) List(kind domain.RunKind, limit int) ([]domain.Run, error) {
	if !u.Enabled() {
		return nil, nil
	}
	return u.store.ListRuns(kind, limit)
}

// Get returns one run including its payload.
func (u *HistoryUseCase) Get(id string) (domain.Run, error) {
	if !u.Enabled() {
		return domain.Run{}, ErrHistoryDisabled
	}
	return u.store.GetRun(id)
}

// Delete removes one run.
func (u *HistoryUseCase) Delete(id string) error {
	if !u.Enabled() {
		return ErrHistoryDisabled
	}
	return u.store.DeleteRun(id)
}

// Clear removes every recorded run.
func (u *HistoryUseCase) Clear() error {
	if !u.Enabled() {
		return ErrHistoryDisabled
	}
	return u.store.Clear()
}
