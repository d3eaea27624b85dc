package graph

import (
	"github.com/dsi-unimi/bvgraph-go/pairsort"
)

// Transpose returns the transpose of g: an arc (u, v) in g becomes (v, u).
// Grounded on transform/transpose.rs's transpose_labeled, which pushes
// (dst, src, label) into a SortPairs and reads the result back sorted;
// here a pairsort.Sorter plays the same role.
func Transpose(g SequentialLabeling, opts pairsort.Options) (SequentialLabeling, error) {
	n := g.NumNodes()
	sorter := pairsort.NewSorter(opts)
	it := g.Iter()
	for it.Next() {
		src := it.Node()
		for _, arc := range it.Successors() {
			sorter.Push(pairsort.Triple{Src: arc.To, Dst: src, Label: arc.Label})
		}
	}
	if err := it.Err(); err != nil {
		sorter.Cleanup()
		return nil, err
	}
	cur, err := sorter.Iter()
	if err != nil {
		return nil, err
	}
	return FromSortedCursor(n, cur), nil
}
