package graph

import (
	"github.com/dsi-unimi/bvgraph-go/bvgerrs"
	"github.com/dsi-unimi/bvgraph-go/pairsort"
)

// Permute returns g with every node renumbered by perm: perm[v] is the new
// id of node v. perm must be a bijection on [0, g.NumNodes()). Like
// transform/perm.rs's permute, the implementation pushes every renumbered
// arc through a pairsort.Sorter and reads them back in order, rather than
// building the permuted adjacency in memory; pass opts to size the
// sorter's batches and temp directory for the graph at hand.
func Permute(g SequentialLabeling, perm []uint64, opts pairsort.Options) (SequentialLabeling, error) {
	n := g.NumNodes()
	if uint64(len(perm)) != n {
		return nil, bvgerrs.E(bvgerrs.KindInvariant, "graph.Permute",
			"permutation length does not match node count")
	}
	sorter := pairsort.NewSorter(opts)
	it := g.Iter()
	for it.Next() {
		src := perm[it.Node()]
		for _, arc := range it.Successors() {
			sorter.Push(pairsort.Triple{Src: src, Dst: perm[arc.To], Label: arc.Label})
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
