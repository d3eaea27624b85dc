package llp

import (
	"sort"

	"github.com/dsi-unimi/bvgraph-go/bvgerrs"
)

// combine folds labels into result in place, the Go counterpart of mod.rs's
// combine: a sort permutation of the node range is computed by the key
// (result[labels[a]], labels[a], result[a], a), then a single scan over
// that order collapses equal key-tuples into a new contiguous label range
// written back into result. tempPerm is reused scratch space sized
// len(result).
func combine(result, labels []uint64, tempPerm []int) (int, error) {
	if len(labels) != len(result) || len(tempPerm) != len(result) {
		return 0, bvgerrs.E(bvgerrs.KindInvariant, "llp.combine", "labels/result/tempPerm length mismatch")
	}
	for i := range tempPerm {
		tempPerm[i] = i
	}
	sort.Slice(tempPerm, func(x, y int) bool {
		a, b := tempPerm[x], tempPerm[y]
		ra, rb := result[labels[a]], result[labels[b]]
		if ra != rb {
			return ra < rb
		}
		if labels[a] != labels[b] {
			return labels[a] < labels[b]
		}
		if result[a] != result[b] {
			return result[a] < result[b]
		}
		return a < b
	})

	first := tempPerm[0]
	prevResult, prevLabel := result[first], labels[first]
	currLabel := uint64(0)
	result[first] = currLabel

	for i := 1; i < len(tempPerm); i++ {
		idx := tempPerm[i]
		r, l := result[idx], labels[idx]
		if r != prevResult || l != prevLabel {
			currLabel++
			prevResult, prevLabel = r, l
		}
		result[idx] = currLabel
	}
	return int(currLabel) + 1, nil
}
