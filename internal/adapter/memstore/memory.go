package memstore

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"semsim/internal/domain"
	"semsim/internal/port"
)

// MemoryStore keeps runs in memory for sessions without a history file,
// such as the WebAssembly build.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]domain.Run
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make(map[string]domain.Run),
		now:  time.Now,
	}
}

func (s *MemoryStore) PutRun(run *domain.Run) error {
	if run.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate run id: %w", err)
		}
		run.ID = id.String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now()
	}

	stored := *run
	stored.Payload = append([]byte(nil), run.Payload...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = stored
	return nil
}

func (s *MemoryStore) GetRun(id string) (domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return domain.Run{}, fmt.Errorf("%w: %s", port.ErrRunNotFound, id)
	}
	run.Payload = append([]byte(nil), run.Payload...)
	return run, nil
}

// ListRuns orders by ID, which for generated IDs is creation order.
func (s *MemoryStore) ListRuns(kind domain.RunKind, limit int) ([]domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]domain.Run, 0, len(s.runs))
	for _, run := range s.runs {
		if kind != "" && run.Kind != kind {
			continue
		}
		run.Payload = nil
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID > runs[j].ID })

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (s *MemoryStore) DeleteRun(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[id]; !ok {
		return fmt.Errorf("%w: %s", port.ErrRunNotFound, id)
	}
	delete(s.runs, id)
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = make(map[string]domain.Run)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
