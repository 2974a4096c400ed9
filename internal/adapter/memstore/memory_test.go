package memstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"semsim/internal/domain"
	"semsim/internal/port"
)

var _ port.RunStore = (*MemoryStore)(nil)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()

	first := &domain.Run{Kind: domain.RunClassify, Summary: "first", Payload: []byte(`{"n":1}`)}
	second := &domain.Run{Kind: domain.RunCompare, Summary: "second"}
	require.NoError(t, s.PutRun(first))
	require.NoError(t, s.PutRun(second))
	require.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	runs, err := s.ListRuns("", 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "second", runs[0].Summary)
	assert.Nil(t, runs[1].Payload)

	runs, err = s.ListRuns(domain.RunClassify, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, first.ID, runs[0].ID)

	got, err := s.GetRun(first.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, string(got.Payload))

	require.NoError(t, s.DeleteRun(first.ID))
	_, err = s.GetRun(first.ID)
	assert.ErrorIs(t, err, port.ErrRunNotFound)
	assert.ErrorIs(t, s.DeleteRun(first.ID), port.ErrRunNotFound)

	require.NoError(t, s.Clear())
	runs, err = s.ListRuns("", 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
