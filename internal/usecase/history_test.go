package usecase

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"semsim/internal/adapter/memstore"
	"semsim/internal/adapter/store"
	"semsim/internal/domain"
)

func TestHistory_RecordAndList(t *testing.T) {
	s, err := store.NewBoltStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer s.Close()

	h := NewHistoryUseCase(s, zerolog.Nop())
	require.True(t, h.Enabled())

	cmpID, err := h.Record(domain.RunCompare, "table", "2 texts", &Comparison{
		Rows:   []string{"a", "b"},
		Cols:   []string{"a", "b"},
		Matrix: domain.SimilarityMatrix{{1, 0.5}, {0.5, 1}},
		Self:   true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, cmpID)

	taskID, err := h.Record(domain.RunTask, "table", "sentiment", domain.SentimentResult{Label: "Positive", Score: 0.8})
	require.NoError(t, err)

	runs, err := h.List("", 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, taskID, runs[0].ID)

	run, err := h.Get(taskID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"sentiment","result":{"label":"Positive","score":0.8,"scores":null}}`, string(run.Payload))

	compares, err := h.List(domain.RunCompare, 10)
	require.NoError(t, err)
	require.Len(t, compares, 1)
	assert.Equal(t, "2 texts", compares[0].Summary)

	require.NoError(t, h.Delete(cmpID))
	_, err = h.Get(cmpID)
	assert.ErrorIs(t, err, store.ErrRunNotFound)
}

func TestHistory_TryRecordLogsStoreFailure(t *testing.T) {
	s, err := store.NewBoltStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	var logs bytes.Buffer
	h := NewHistoryUseCase(s, zerolog.New(&logs))

	_, err = h.Record(domain.RunCompare, "table", "closed", map[string]int{"n": 1})
	require.Error(t, err)

	id := h.TryRecord(domain.RunCompare, "table", "closed", map[string]int{"n": 1})
	assert.Empty(t, id)
	assert.Contains(t, logs.String(), "run not recorded")
	assert.Contains(t, logs.String(), `"level":"warn"`)

	ok := NewHistoryUseCase(memstore.NewMemoryStore(), zerolog.Nop())
	assert.NotEmpty(t, ok.TryRecord(domain.RunClassify, "table", "fine", []string{"a"}))
}

func TestHistory_Disabled(t *testing.T) {
	h := NewHistoryUseCase(nil, zerolog.Nop())
	assert.False(t, h.Enabled())

	id, err := h.Record(domain.RunClassify, "m", "s", map[string]int{"n": 1})
	require.NoError(t, err)
	assert.Empty(t, id)

	runs, err := h.List("", 0)
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = h.Get("x")
	assert.ErrorIs(t, err, ErrHistoryDisabled)
}

func TestHistory_Clear(t *testing.T) {
	h := NewHistoryUseCase(memstore.NewMemoryStore(), zerolog.Nop())

	_, err := h.Record(domain.RunDrift, "mock", "drift", map[string]int{"samples": 4})
	require.NoError(t, err)
	require.NoError(t, h.Clear())

	runs, err := h.List("", 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
