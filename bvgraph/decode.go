package bvgraph

import (
	"github.com/dsi-unimi/bvgraph-go/bitio"
	"github.com/dsi-unimi/bvgraph-go/bvgerrs"
	"github.com/dsi-unimi/bvgraph-go/graph"
)

var errSeekUnsupported = bvgerrs.E(bvgerrs.KindInvariant, "bvgraph.SequentialGraph.IterFrom", "sequential decoding only supports starting from node 0; use RandomAccessGraph for arbitrary start points")

// SequentialGraph wraps a BV bitstream as a graph.SequentialLabeling,
// decoding records one at a time through a window ring sized to the
// configured compression window, exactly as spec §4.5 describes for the
// sequential access mode.
type SequentialGraph struct {
	data     []byte
	numNodes uint64
	opts     Options
}

// NewSequentialGraph wraps data (the full graph bitstream) for sequential
// decoding of a graph with numNodes nodes under opts.
func NewSequentialGraph(data []byte, numNodes uint64, opts Options) *SequentialGraph {
	return &SequentialGraph{data: data, numNodes: numNodes, opts: opts}
}

func (g *SequentialGraph) NumNodes() uint64 { return g.numNodes }

func (g *SequentialGraph) NumArcsHint() (uint64, bool) { return 0, false }

func (g *SequentialGraph) Iter() graph.Lender { return g.IterFrom(0) }

// IterFrom only supports from == 0: the bitstream has no random entry
// points without an offset index, which is what RandomAccessGraph is for.
func (g *SequentialGraph) IterFrom(from uint64) graph.Lender {
	l := &seqLender{
		g:    g,
		r:    bitio.NewReader(g.data, bitio.BigEndian),
		ring: make([][]uint64, g.opts.WindowSize+1),
		node: ^uint64(0),
	}
	if from != 0 {
		l.err = errSeekUnsupported
	}
	return l
}

type seqLender struct {
	g    *SequentialGraph
	r    *bitio.Reader
	ring [][]uint64
	node uint64
	next uint64
	succ []graph.Arc
	err  error
}

func (l *seqLender) Next() bool {
	if l.err != nil || l.next >= l.g.numNodes {
		return false
	}
	l.node = l.next
	ids, err := decodeRecord(l.r, l.g.opts, l.node, l.resolve)
	if err != nil {
		l.err = err
		return false
	}
	ringSize := uint64(len(l.ring))
	l.ring[l.node%ringSize] = ids
	l.succ = l.succ[:0]
	for _, id := range ids {
		l.succ = append(l.succ, graph.Arc{To: id})
	}
	l.next++
	return true
}

func (l *seqLender) resolve(refNode uint64) ([]uint64, error) {
	return l.ring[refNode%uint64(len(l.ring))], nil
}

func (l *seqLender) Node() uint64          { return l.node }
func (l *seqLender) Successors() []graph.Arc { return l.succ }
func (l *seqLender) Err() error             { return l.err }
