package bvgraph

import (
	"github.com/dsi-unimi/bvgraph-go/bitio"
	"github.com/dsi-unimi/bvgraph-go/bvgerrs"
	"github.com/dsi-unimi/bvgraph-go/eliasfano"
	"github.com/dsi-unimi/bvgraph-go/graph"
)

// RandomAccessGraph wraps a BV bitstream plus its Elias-Fano offset index
// as a graph.RandomAccessLabeling. Resolving a node's successors may
// recurse through up to MaxRefCount chained references, each a fresh
// bit-stream seek and record decode, per spec §4.5.
type RandomAccessGraph struct {
	data     []byte
	offsets  *eliasfano.Index
	numNodes uint64
	numArcs  uint64
	opts     Options
}

// NewRandomAccessGraph wraps data for random access, given the Elias-Fano
// offset index built by DecodeOffsets and the node/arc counts recorded in
// the .properties sidecar.
func NewRandomAccessGraph(data []byte, offsets *eliasfano.Index, numNodes, numArcs uint64, opts Options) *RandomAccessGraph {
	return &RandomAccessGraph{data: data, offsets: offsets, numNodes: numNodes, numArcs: numArcs, opts: opts}
}

func (g *RandomAccessGraph) NumNodes() uint64          { return g.numNodes }
func (g *RandomAccessGraph) NumArcs() uint64           { return g.numArcs }
func (g *RandomAccessGraph) NumArcsHint() (uint64, bool) { return g.numArcs, true }

func (g *RandomAccessGraph) Iter() graph.Lender { return graph.LendSequentially(g, 0) }

func (g *RandomAccessGraph) IterFrom(from uint64) graph.Lender {
	return graph.LendSequentially(g, from)
}

// decodeAt decodes the record at node, seeking via the offset index and
// recursively resolving any reference chain.
func (g *RandomAccessGraph) decodeAt(node uint64) ([]uint64, error) {
	if node >= g.numNodes {
		return nil, bvgerrs.E(bvgerrs.KindInvariant, "bvgraph.RandomAccessGraph", "node out of range")
	}
	bitOffset, err := g.offsets.Get(int(node))
	if err != nil {
		return nil, err
	}
	r := bitio.NewReader(g.data, bitio.BigEndian)
	r.SetBitPos(int64(bitOffset))
	return decodeRecord(r, g.opts, node, g.resolveChain)
}

func (g *RandomAccessGraph) resolveChain(refNode uint64) ([]uint64, error) {
	return g.decodeAt(refNode)
}

func (g *RandomAccessGraph) Outdegree(node uint64) int {
	ids, err := g.decodeAt(node)
	if err != nil {
		return 0
	}
	return len(ids)
}

func (g *RandomAccessGraph) Labels(node uint64) []graph.Arc {
	ids, err := g.decodeAt(node)
	if err != nil {
		return nil
	}
	arcs := make([]graph.Arc, len(ids))
	for i, id := range ids {
		arcs[i] = graph.Arc{To: id}
	}
	return arcs
}
