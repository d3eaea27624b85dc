// Package testgraph provides a small in-memory graph for exercising
// graph.SequentialLabeling/RandomAccessLabeling implementations and their
// consumers in tests, grounded on original_source/webgraph/src/graphs/
// vec_graph.rs's LabeledVecGraph: a plain slice of per-node successor
// slices, not meant for production use (no compression, no bounds on
// memory).
package testgraph

import (
	"sort"

	"github.com/dsi-unimi/bvgraph-go/graph"
)

// VecGraph is a mutable, in-memory graph.RandomAccessLabeling.
type VecGraph struct {
	succ    [][]graph.Arc
	numArcs uint64
}

// New returns an empty graph with n isolated nodes.
func New(n uint64) *VecGraph {
	return &VecGraph{succ: make([][]graph.Arc, n)}
}

// AddNode grows the graph so node exists, returning true if it was new.
func (g *VecGraph) AddNode(node uint64) bool {
	if node < uint64(len(g.succ)) {
		return false
	}
	grown := make([][]graph.Arc, node+1)
	copy(grown, g.succ)
	g.succ = grown
	return true
}

// AddArc adds arc (u, v) with the given label. Unlike LabeledVecGraph's
// add_arc, successors need not already be sorted: AddArc inserts v in
// order, accepting an O(degree) cost per insertion, so callers can add
// arcs in any order rather than only strictly increasing successor order.
func (g *VecGraph) AddArc(u, v uint64, label []byte) {
	g.AddNode(u)
	g.AddNode(v)
	succ := g.succ[u]
	i := sort.Search(len(succ), func(i int) bool { return succ[i].To >= v })
	if i < len(succ) && succ[i].To == v {
		succ[i].Label = label
		return
	}
	succ = append(succ, graph.Arc{})
	copy(succ[i+1:], succ[i:])
	succ[i] = graph.Arc{To: v, Label: label}
	g.succ[u] = succ
	g.numArcs++
}

// FromArcList builds a VecGraph from a flat arc list, growing the node
// count to cover every endpoint seen.
func FromArcList(arcs [][2]uint64) *VecGraph {
	g := New(0)
	for _, a := range arcs {
		g.AddArc(a[0], a[1], nil)
	}
	return g
}

// FromLender drains a graph.Lender into a new VecGraph with numNodes
// nodes, mirroring LabeledVecGraph::from_lender.
func FromLender(numNodes uint64, it graph.Lender) (*VecGraph, error) {
	g := New(numNodes)
	for it.Next() {
		node := it.Node()
		g.AddNode(node)
		for _, arc := range it.Successors() {
			g.AddArc(node, arc.To, arc.Label)
		}
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *VecGraph) NumNodes() uint64 { return uint64(len(g.succ)) }

func (g *VecGraph) NumArcsHint() (uint64, bool) { return g.numArcs, true }

func (g *VecGraph) NumArcs() uint64 { return g.numArcs }

func (g *VecGraph) Outdegree(node uint64) int { return len(g.succ[node]) }

func (g *VecGraph) Labels(node uint64) []graph.Arc { return g.succ[node] }

func (g *VecGraph) Iter() graph.Lender { return g.IterFrom(0) }

func (g *VecGraph) IterFrom(from uint64) graph.Lender {
	return &vecLender{g: g, next: from}
}

type vecLender struct {
	g    *VecGraph
	next uint64
	node uint64
}

func (l *vecLender) Next() bool {
	if l.next >= l.g.NumNodes() {
		return false
	}
	l.node = l.next
	l.next++
	return true
}

func (l *vecLender) Node() uint64       { return l.node }
func (l *vecLender) Successors() []graph.Arc { return l.g.succ[l.node] }
func (l *vecLender) Err() error          { return nil }
