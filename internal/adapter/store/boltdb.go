package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
	"semsim/internal/domain"
	"semsim/internal/port"
)

var (
	bucketRuns = []byte("runs")
	bucketMeta = []byte("meta")
)

// ErrRunNotFound is returned by GetRun and DeleteRun for unknown IDs.
var ErrRunNotFound = port.ErrRunNotFound

// BoltStore keeps the run history in a single BoltDB file. Keys are UUIDv7
// strings, so cursor order is creation order.
type BoltStore struct {
	db  *bbolt.DB
	now func() time.Time
}

type storedRun struct {
	Kind      domain.RunKind  `json:"kind"`
	Model     string          `json:"model"`
	CreatedAt int64           `json:"created_at"`
	Summary   string          `json:"summary"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	s := &BoltStore{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *BoltStore) PutRun(run *domain.Run) error {
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

	stored := storedRun{
		Kind:      run.Kind,
		Model:     run.Model,
		CreatedAt: run.CreatedAt.UnixNano(),
		Summary:   run.Summary,
	}
	if len(run.Payload) > 0 {
		if !json.Valid(run.Payload) {
			return fmt.Errorf("run %s: payload is not valid JSON", run.ID)
		}
		stored.Payload = json.RawMessage(run.Payload)
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRuns).Put([]byte(run.ID), data)
	})
}

func (s *BoltStore) GetRun(id string) (domain.Run, error) {
	var run domain.Run
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketRuns).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		var err error
		run, err = decodeRun(id, data)
		return err
	})
	return run, err
}

func (s *BoltStore) ListRuns(kind domain.RunKind, limit int) ([]domain.Run, error) {
	var runs []domain.Run
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketRuns).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			run, err := decodeRun(string(k), v)
			if err != nil {
				return err
			}
			if kind != "" && run.Kind != kind {
				continue
			}
			run.Payload = nil
			runs = append(runs, run)
			if limit > 0 && len(runs) >= limit {
				break
			}
		}
		return nil
	})
	return runs, err
}

func (s *BoltStore) DeleteRun(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		if b.Get([]byte(id)) == nil {
			return fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return b.Delete([]byte(id))
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func decodeRun(id string, data []byte) (domain.Run, error) {
	var stored storedRun
	if err := json.Unmarshal(data, &stored); err != nil {
		return domain.Run{}, fmt.Errorf("corrupt run %s: %w", id, err)
	}
	run := domain.Run{
		ID:        id,
		Kind:      stored.Kind,
		Model:     stored.Model,
		CreatedAt: time.Unix(0, stored.CreatedAt),
		Summary:   stored.Summary,
	}
	if len(stored.Payload) > 0 {
		run.Payload = []byte(stored.Payload)
	}
	return run, nil
}
