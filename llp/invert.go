package llp

import (
	"sort"

	"github.com/grailbio/base/traverse"

	"github.com/dsi-unimi/bvgraph-go/graph"
)

// invertPermutation returns inv such that inv[perm[i]] == i for every i,
// the Go counterpart of mod.rs's invert_permutation. perm must be a
// bijection on [0, len(perm)). Unlike the original, which needs an
// UnsafeCell-backed SyncSlice to convince the Rust borrow checker that
// concurrent writes to disjoint indices of inv are sound, Go's memory
// model already permits goroutines writing to distinct slice elements
// without synchronization — each i in a worker's range writes exactly one
// element of inv, and perm's bijectivity guarantees those target indices
// never collide across workers.
func invertPermutation(perm []uint64) []uint64 {
	inv := make([]uint64, len(perm))
	ranges := graph.Split(uint64(len(perm)), traverseParallelism(len(perm)))
	_ = traverse.Each(len(ranges), func(i int) error {
		r := ranges[i]
		for j := r.Start; j < r.End; j++ {
			inv[perm[j]] = j
		}
		return nil
	})
	return inv
}

// LabelsToRanks converts labels into the permutation that sorts nodes by
// (label, node id) and inverts it, so that applying the result as a node
// renumbering groups same-label nodes contiguously in label order — the Go
// counterpart of mod.rs's labels_to_ranks.
func LabelsToRanks(labels []uint64) []uint64 {
	perm := make([]uint64, len(labels))
	for i := range perm {
		perm[i] = uint64(i)
	}
	sort.SliceStable(perm, func(a, b int) bool { return labels[perm[a]] < labels[perm[b]] })
	return invertPermutation(perm)
}

// traverseParallelism bounds how many goroutines invertPermutation spawns:
// there is no point splitting a small slice into more ranges than it has
// elements, and graph.Split already clamps parts to len(perm) on its own,
// so this just avoids handing traverse.Each an unreasonably large n for
// tiny inputs.
func traverseParallelism(n int) int {
	const maxParts = 64
	if n < maxParts {
		if n < 1 {
			return 1
		}
		return n
	}
	return maxParts
}
