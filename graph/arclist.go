package graph

import (
	"github.com/dsi-unimi/bvgraph-go/pairsort"
)

// arcListLabeling presents a pairsort.Cursor already in ascending
// (Src, Dst[, Label]) order as a one-pass SequentialLabeling, the Go
// counterpart of arc_list_graph::ArcListGraph: both Permute and Transpose
// build one of these over the Cursor produced by sorting/re-sorting a
// graph's arcs.
type arcListLabeling struct {
	numNodes uint64
	cur      pairsort.Cursor
}

// FromSortedCursor wraps a Cursor already in ascending (Src, Dst) order as
// a SequentialLabeling over numNodes nodes. The Cursor is consumed by the
// single Lender an arcListLabeling can produce; Iter/IterFrom may only be
// called once.
func FromSortedCursor(numNodes uint64, cur pairsort.Cursor) SequentialLabeling {
	return &arcListLabeling{numNodes: numNodes, cur: cur}
}

func (a *arcListLabeling) NumNodes() uint64 { return a.numNodes }

func (a *arcListLabeling) NumArcsHint() (uint64, bool) { return 0, false }

func (a *arcListLabeling) Iter() Lender { return a.IterFrom(0) }

func (a *arcListLabeling) IterFrom(from uint64) Lender {
	return &arcListLender{labeling: a, next: from}
}

// arcListLender walks a.cur once, grouping consecutive triples that share
// a Src into one node's successor list. Nodes with no arcs (including any
// before the first triple's Src, or after the last) are yielded with an
// empty successor list so NumNodes stays authoritative.
type arcListLender struct {
	labeling *arcListLabeling
	next     uint64
	node     uint64
	succ     []Arc
	err      error
	pending  pairsort.Triple
	havePend bool
	done     bool
}

func (l *arcListLender) Next() bool {
	if l.err != nil || l.next >= l.labeling.numNodes {
		return false
	}
	l.node = l.next
	l.next++
	l.succ = l.succ[:0]

	if !l.havePend && !l.done {
		if l.labeling.cur.Next() {
			l.pending = l.labeling.cur.Triple()
			l.havePend = true
		} else {
			if err := l.labeling.cur.Err(); err != nil {
				l.err = err
				return false
			}
			l.done = true
		}
	}
	// Discard any arcs whose source precedes the current node: only
	// possible when IterFrom skipped over earlier nodes without visiting
	// them, since the cursor itself is strictly increasing.
	for l.havePend && l.pending.Src < l.node {
		if l.labeling.cur.Next() {
			l.pending = l.labeling.cur.Triple()
		} else {
			if err := l.labeling.cur.Err(); err != nil {
				l.err = err
				return false
			}
			l.havePend = false
			l.done = true
		}
	}
	for l.havePend && l.pending.Src == l.node {
		l.succ = append(l.succ, Arc{To: l.pending.Dst, Label: l.pending.Label})
		if l.labeling.cur.Next() {
			l.pending = l.labeling.cur.Triple()
		} else {
			if err := l.labeling.cur.Err(); err != nil {
				l.err = err
				return false
			}
			l.havePend = false
			l.done = true
		}
	}
	return true
}

func (l *arcListLender) Node() uint64      { return l.node }
func (l *arcListLender) Successors() []Arc { return l.succ }
func (l *arcListLender) Err() error        { return l.err }
