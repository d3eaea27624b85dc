package llp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsi-unimi/bvgraph-go/internal/testgraph"
)

func symmetric(arcs [][2]uint64) *testgraph.VecGraph {
	g := testgraph.FromArcList(nil)
	for _, a := range arcs {
		g.AddArc(a[0], a[1], nil)
		g.AddArc(a[1], a[0], nil)
	}
	return g
}

func TestLLPDeterministicK4(t *testing.T) {
	g := symmetric([][2]uint64{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}})

	opts := DefaultOptions()
	opts.Gammas = []float64{0.0}
	opts.Seed = 0
	opts.Predicate = MaxUpdates(3)

	labels, err := Run(g, opts)
	require.NoError(t, err)
	require.Len(t, labels, 4)

	first := labels[0]
	for i, l := range labels {
		assert.Equal(t, first, l, "node %d", i)
	}
}

func TestLLPMultipleGammas(t *testing.T) {
	// Star graph: 0 connected to 1,2,3,4.
	g := symmetric([][2]uint64{{0, 1}, {0, 2}, {0, 3}, {0, 4}})

	opts := DefaultOptions()
	opts.Gammas = []float64{0.0, 0.5, 1.0, 2.0}
	opts.Seed = 7
	opts.Predicate = MaxUpdates(2)

	labels, err := Run(g, opts)
	require.NoError(t, err)
	require.Len(t, labels, 5)
	for _, l := range labels {
		assert.Less(t, l, uint64(5))
	}
}

func TestLLPLabelsOnlyAndCombine(t *testing.T) {
	// Path graph: 0 - 1 - 2 - 3 - 4.
	g := symmetric([][2]uint64{{0, 1}, {1, 2}, {2, 3}, {3, 4}})

	dir := t.TempDir()
	opts := DefaultOptions()
	opts.Gammas = []float64{0.0}
	opts.Seed = 123
	opts.Predicate = MaxUpdates(1)
	opts.WorkDir = dir

	require.NoError(t, RunLabelsOnly(g, opts))

	labels, err := CombineLabels(dir, opts.RecombineWithBest)
	require.NoError(t, err)
	assert.Len(t, labels, 5)
}

// TestCombineSingleGammaPreservesPartition covers the round-trip property
// from §8: combining a single labeling should reproduce the same grouping
// of nodes into communities, modulo renaming of label ids.
func TestCombineSingleGammaPreservesPartition(t *testing.T) {
	raw := []uint64{5, 5, 2, 2, 2, 0}
	dir := t.TempDir()
	require.NoError(t, writeArtifact(artifactPath(dir, 0), labelsArtifact{
		GapCost: 1.0,
		Gamma:   0.0,
		Labels:  raw,
	}))

	combined, err := CombineLabels(dir, true)
	require.NoError(t, err)
	require.Len(t, combined, len(raw))

	for i := range raw {
		for j := range raw {
			assert.Equal(t, raw[i] == raw[j], combined[i] == combined[j], "nodes %d,%d", i, j)
		}
	}
}

func TestLabelsToRanksBijection(t *testing.T) {
	labels := []uint64{3, 1, 4, 1, 5, 9, 2, 6}
	ranks := LabelsToRanks(labels)
	require.Len(t, ranks, len(labels))

	seen := make([]bool, len(ranks))
	for _, r := range ranks {
		require.Less(t, int(r), len(seen))
		assert.False(t, seen[r], "rank %d used twice", r)
		seen[r] = true
	}
}

func TestInvertPermutationRoundTrip(t *testing.T) {
	perm := []uint64{2, 0, 3, 1}
	inv := invertPermutation(perm)
	for i, p := range perm {
		assert.Equal(t, uint64(i), inv[p])
	}
}

func TestPredicates(t *testing.T) {
	assert.True(t, MaxUpdates(3).Eval(PredParams{Update: 3}))
	assert.False(t, MaxUpdates(3).Eval(PredParams{Update: 2}))

	assert.True(t, MinGain(0.01).Eval(PredParams{Gain: 0.005}))
	assert.False(t, MinGain(0.01).Eval(PredParams{Gain: 0.5}))

	combined := Or(MinGain(0.01), MaxUpdates(5))
	assert.True(t, combined.Eval(PredParams{Gain: 1, Update: 5}))
	assert.False(t, combined.Eval(PredParams{Gain: 1, Update: 0}))

	assert.True(t, PercentModified(1).Eval(PredParams{NumNodes: 100, Modified: 0}))
	assert.False(t, PercentModified(1).Eval(PredParams{NumNodes: 100, Modified: 50}))
}

func TestLabelCounts(t *testing.T) {
	m := newLabelCounts(4)
	m.add(10, 1)
	m.add(20, 2)
	m.add(10, 1)
	m.ensure(30)

	v, ok := m.get(10)
	require.True(t, ok)
	assert.Equal(t, 2, v)

	v, ok = m.get(20)
	require.True(t, ok)
	assert.Equal(t, 2, v)

	v, ok = m.get(30)
	require.True(t, ok)
	assert.Equal(t, 0, v)

	_, ok = m.get(999)
	assert.False(t, ok)

	seen := map[uint64]int{}
	m.each(func(label uint64, count int) { seen[label] = count })
	assert.Equal(t, map[uint64]int{10: 2, 20: 2, 30: 0}, seen)
}

func TestArtifactRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := artifactPath(dir, 3)
	want := labelsArtifact{GapCost: 12.5, Gamma: 0.25, Labels: []uint64{0, 1, 1, 2, 100000}}
	require.NoError(t, writeArtifact(path, want))

	got, err := readArtifact(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGapCostZeroForEmptyGraph(t *testing.T) {
	g := testgraph.New(0)
	assert.Equal(t, float64(0), computeLogGapCost(g, nil))
}
