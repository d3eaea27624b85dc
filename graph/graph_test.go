package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsi-unimi/bvgraph-go/graph"
	"github.com/dsi-unimi/bvgraph-go/internal/testgraph"
	"github.com/dsi-unimi/bvgraph-go/pairsort"
)

func sampleGraph() *testgraph.VecGraph {
	return testgraph.FromArcList([][2]uint64{
		{0, 1}, {0, 2}, {1, 2}, {1, 3}, {2, 4}, {3, 4},
	})
}

func drainLabeling(t *testing.T, l graph.SequentialLabeling) map[uint64][]uint64 {
	t.Helper()
	out := map[uint64][]uint64{}
	it := l.Iter()
	for it.Next() {
		var succ []uint64
		for _, a := range it.Successors() {
			succ = append(succ, a.To)
		}
		out[it.Node()] = succ
	}
	require.NoError(t, it.Err())
	return out
}

func TestVecGraphRandomAccessMatchesSequential(t *testing.T) {
	g := sampleGraph()
	require.NoError(t, graph.CheckImpl(g))
}

func TestEqSortedIdentity(t *testing.T) {
	g := sampleGraph()
	require.NoError(t, graph.EqSorted(g, g))
}

func TestEqSortedDetectsNodeCountMismatch(t *testing.T) {
	a := testgraph.FromArcList([][2]uint64{{0, 1}})
	b := testgraph.FromArcList([][2]uint64{{0, 1}, {0, 2}})
	err := graph.EqSorted(a, b)
	require.Error(t, err)
	mismatch, ok := err.(*graph.EqMismatch)
	require.True(t, ok)
	assert.Equal(t, "num_nodes", mismatch.Field)
}

func TestEqSortedDetectsSuccessorMismatch(t *testing.T) {
	a := testgraph.New(3)
	a.AddArc(0, 1, nil)
	b := testgraph.New(3)
	b.AddArc(0, 2, nil)
	err := graph.EqSorted(a, b)
	require.Error(t, err)
	mismatch, ok := err.(*graph.EqMismatch)
	require.True(t, ok)
	assert.Equal(t, "successor", mismatch.Field)
}

func TestSplitCoversRangeExactlyAndAdjacently(t *testing.T) {
	for _, tc := range []struct {
		n     uint64
		parts int
	}{
		{0, 4}, {1, 4}, {5, 1}, {10, 3}, {10, 10}, {10, 100},
	} {
		ranges := graph.Split(tc.n, tc.parts)
		var prevEnd uint64
		for i, r := range ranges {
			if i == 0 {
				assert.Equal(t, uint64(0), r.Start)
			} else {
				assert.Equal(t, prevEnd, r.Start)
			}
			assert.LessOrEqual(t, r.Start, r.End)
			prevEnd = r.End
		}
		if tc.n > 0 {
			assert.Equal(t, tc.n, prevEnd)
		}
	}
}

func TestSplitPartsNeverExceedsNodeCount(t *testing.T) {
	ranges := graph.Split(3, 100)
	assert.LessOrEqual(t, len(ranges), 3)
}

func TestLendSequentiallyMatchesNativeIter(t *testing.T) {
	g := sampleGraph()
	native := drainLabeling(t, g)

	it := graph.LendSequentially(g, 0)
	got := map[uint64][]uint64{}
	for it.Next() {
		var succ []uint64
		for _, a := range it.Successors() {
			succ = append(succ, a.To)
		}
		got[it.Node()] = succ
	}
	require.NoError(t, it.Err())
	assert.Equal(t, native, got)
}

func TestTransposeRoundTrips(t *testing.T) {
	g := sampleGraph()
	opts := pairsort.Options{TmpDir: t.TempDir(), BatchSize: 3}

	trans, err := graph.Transpose(g, opts)
	require.NoError(t, err)
	transVec, err := testgraph.FromLender(g.NumNodes(), trans.Iter())
	require.NoError(t, err)

	opts2 := pairsort.Options{TmpDir: t.TempDir(), BatchSize: 3}
	back, err := graph.Transpose(transVec, opts2)
	require.NoError(t, err)

	require.NoError(t, graph.EqSorted(g, back))
}

func TestPermuteAppliesPermutation(t *testing.T) {
	g := sampleGraph()
	perm := []uint64{4, 3, 2, 1, 0} // reverse
	opts := pairsort.Options{TmpDir: t.TempDir(), BatchSize: 3}

	permuted, err := graph.Permute(g, perm, opts)
	require.NoError(t, err)
	got := drainLabeling(t, permuted)

	// Permute renumbers endpoints and re-sorts, so each permuted node's
	// successors come out in ascending order regardless of the original
	// successor order.
	want := map[uint64][]uint64{
		4: {2, 3},
		3: {1, 2},
		2: {0},
		1: {0},
		0: nil,
	}
	assert.Equal(t, want, got)
}

func TestPermuteRejectsWrongLengthPermutation(t *testing.T) {
	g := sampleGraph()
	opts := pairsort.Options{TmpDir: t.TempDir()}
	_, err := graph.Permute(g, []uint64{0, 1}, opts)
	require.Error(t, err)
}
