package engine

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semsim/internal/domain"
)

func distance(a, b domain.Point) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func TestProject_CollinearKeepsOrdering(t *testing.T) {
	xs := []domain.Embedding{{0, 0}, {1, 1}, {3, 3}}

	proj, err := Project(xs, 1)
	require.NoError(t, err)
	require.Len(t, proj.Points, 3)

	a, b, c := proj.Points[0][0], proj.Points[1][0], proj.Points[2][0]
	assert.True(t, (a < b && b < c) || (a > b && b > c), "middle point moved: %v %v %v", a, b, c)
	assert.InDelta(t, 2*math.Abs(b-a), math.Abs(c-b), tolerance)
	assert.InDelta(t, 1.0, proj.ExplainedVariance[0], tolerance)
}

func TestProject_PreservesDistancesWithinSpan(t *testing.T) {
	xs := []domain.Embedding{
		{1, 2, 0},
		{2, 0, 0},
		{-1, 1, 0},
		{0, -3, 0},
	}

	proj, err := Project(xs, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, proj.Dimensions())

	for i := range xs {
		for j := range xs {
			orig := distance(domain.Point(xs[i]), domain.Point(xs[j]))
			got := distance(proj.Points[i], proj.Points[j])
			assert.InDelta(t, orig, got, 1e-9, "pair %d,%d", i, j)
		}
	}
}

func TestProject_HighDimensionalOrder(t *testing.T) {
	r := rand.New(rand.NewSource(8))
	n, d := 12, 50
	xs := make([]domain.Embedding, n)
	for i := range xs {
		xs[i] = randomEmbedding(r, d)
	}

	proj, err := Project(xs, 3)
	require.NoError(t, err)
	require.Len(t, proj.Points, n)
	for _, p := range proj.Points {
		assert.Len(t, p, 3)
	}

	ev := proj.ExplainedVariance
	assert.True(t, sort.SliceIsSorted(ev, func(i, j int) bool { return ev[i] > ev[j] }))
	for _, v := range ev {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}

	// Projected points stay centred.
	for axis := 0; axis < 3; axis++ {
		var sum float64
		for _, p := range proj.Points {
			sum += p[axis]
		}
		assert.InDelta(t, 0.0, sum, 1e-9)
	}
}

func TestProject_Reproducible(t *testing.T) {
	r := rand.New(rand.NewSource(9))
	xs := make([]domain.Embedding, 6)
	for i := range xs {
		xs[i] = randomEmbedding(r, 10)
	}

	first, err := Project(xs, 2)
	require.NoError(t, err)
	second, err := Project(xs, 2)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestProject_InsufficientSamples(t *testing.T) {
	tests := []struct {
		name string
		xs   []domain.Embedding
		k    int
	}{
		{"no samples", nil, 2},
		{"one sample", []domain.Embedding{{1, 2, 3}}, 1},
		{"k above n-1", []domain.Embedding{{1, 2, 3}, {4, 5, 6}}, 2},
		{"k above D", []domain.Embedding{{1, 2}, {3, 4}, {5, 7}, {0, 1}}, 3},
		{"k zero", []domain.Embedding{{1, 2}, {3, 4}}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Project(tc.xs, tc.k)
			var insErr *domain.InsufficientSamplesError
			require.ErrorAs(t, err, &insErr)
			assert.Equal(t, len(tc.xs), insErr.Samples)
		})
	}
}

func TestProject_DimensionMismatch(t *testing.T) {
	_, err := Project([]domain.Embedding{{1, 2}, {1, 2, 3}, {0, 0}}, 1)
	var dimErr *domain.DimensionMismatchError
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, "sample 1", dimErr.Item)
}
