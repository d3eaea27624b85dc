package llp

import (
	"math/bits"

	"github.com/grailbio/base/traverse"

	"github.com/dsi-unimi/bvgraph-go/graph"
)

// computeLogGapCost estimates how well g would compress under the node
// order induced by perm (perm[v] is v's position under the candidate
// order): for every node (the sum does not depend on visiting order, so
// nodes are visited by id), it looks up the node's
// successors, permutes and sorts them, and sums ⌈log2(1+|gap|)⌉ across
// consecutive values (the first successor's gap is taken from the node's
// own permuted position), a cheap proxy for the BV residual bit cost the
// real encoder would pay. Grounded on mod.rs step 2's description and
// gap_cost.rs's call shape (`compute_log_gap_cost(&PermutedGraph{...},
// granularity, deg_cumul, &mut update_pl)`); the body is original since
// gap_cost.rs was not part of the pack. The same graph.Split/traverse.Each
// partitioning bvgraph's parallel encoder uses is reused here, matching
// §4.8's note that the two share split machinery.
func computeLogGapCost(g graph.RandomAccessLabeling, perm []uint64) float64 {
	n := g.NumNodes()
	if n == 0 {
		return 0
	}
	ranges := graph.Split(n, traverseParallelism(int(n)))
	partial := make([]float64, len(ranges))
	scratch := make([][]uint64, len(ranges))

	_ = traverse.Each(len(ranges), func(i int) error {
		r := ranges[i]
		buf := scratch[i]
		var cost float64
		for node := r.Start; node < r.End; node++ {
			arcs := g.Labels(node)
			if len(arcs) == 0 {
				continue
			}
			if cap(buf) < len(arcs) {
				buf = make([]uint64, len(arcs))
			}
			buf = buf[:len(arcs)]
			for j, a := range arcs {
				buf[j] = perm[a.To]
			}
			insertionSortUint64(buf)

			prev := perm[node]
			for _, succ := range buf {
				cost += logGap(prev, succ)
				prev = succ
			}
		}
		partial[i] = cost
		scratch[i] = buf
		return nil
	})

	var total float64
	for _, p := range partial {
		total += p
	}
	return total
}

// logGap returns ⌈log2(1+|to-from|)⌉.
func logGap(from, to uint64) float64 {
	var diff uint64
	if to >= from {
		diff = to - from
	} else {
		diff = from - to
	}
	return float64(bits.Len64(diff))
}

// insertionSortUint64 sorts small successor buffers in place; node
// out-degrees in practice are small enough that this beats the overhead of
// sort.Slice's reflection-free but still indirect comparator calls.
func insertionSortUint64(a []uint64) {
	for i := 1; i < len(a); i++ {
		v := a[i]
		j := i - 1
		for j >= 0 && a[j] > v {
			a[j+1] = a[j]
			j--
		}
		a[j+1] = v
	}
}
