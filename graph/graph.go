// Package graph defines the sequential and random-access labeling
// interfaces every other package in this module programs against: the BV
// decoder/encoder, the LLP engine, and pairsort-backed transposition and
// permutation all consume or produce a graph.SequentialLabeling, and
// anything that also supports random access (an in-memory test graph, a
// loaded BV graph) additionally satisfies graph.RandomAccessLabeling.
//
// The split between the two mirrors original_source/webgraph/src/traits/
// labels.rs's SequentialLabeling/RandomAccessLabeling trait pair: a
// sequential labeling only promises a single forward pass over successor
// lists via a Lender, while a random-access labeling additionally promises
// Outdegree/Labels/NumArcs at any node index without walking from the
// start.
package graph

// Arc is one directed edge's successor together with its opaque payload.
// Label is nil for unlabeled graphs.
type Arc struct {
	To    uint64
	Label []byte
}

// Lender walks a labeling's nodes in increasing order. Successors returned
// by one call are only valid until the next call to Next: callers that need
// to retain them past that point must copy, the same "borrowed view"
// contract labels.rs's Lender associated type carries over from the
// lender crate it's built on.
type Lender interface {
	// Next advances to the next node, returning false once exhausted or on
	// error; callers must check Err after a false return.
	Next() bool
	// Node returns the current node's id.
	Node() uint64
	// Successors returns the current node's successor list, valid only
	// until the next call to Next.
	Successors() []Arc
	Err() error
}

// SequentialLabeling is a one-pass-from-the-start view of a graph's arcs.
type SequentialLabeling interface {
	// NumNodes is the number of nodes in the labeling.
	NumNodes() uint64
	// NumArcsHint is a cheap upper bound on the number of arcs, or false
	// if no such bound is known without a full pass.
	NumArcsHint() (uint64, bool)
	// Iter returns a Lender starting at node 0.
	Iter() Lender
	// IterFrom returns a Lender starting at the given node, skipping any
	// earlier nodes without visiting them when the underlying
	// implementation supports it (a random-access labeling always can; a
	// purely sequential one may have to walk from the start).
	IterFrom(from uint64) Lender
}

// RandomAccessLabeling additionally promises direct access to any node's
// successors and degree without a sequential pass.
type RandomAccessLabeling interface {
	SequentialLabeling
	// NumArcs is the exact number of arcs in the labeling.
	NumArcs() uint64
	// Outdegree returns the number of successors of node.
	Outdegree(node uint64) int
	// Labels returns node's successor list directly.
	Labels(node uint64) []Arc
}
