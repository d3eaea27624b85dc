package graph

// randomAccessLender derives sequential iteration from a
// RandomAccessLabeling, the Go counterpart of labels.rs's IteratorImpl: any
// random-access labeling that does not want to hand-write its own Lender
// can return this from Iter/IterFrom instead.
type randomAccessLender struct {
	labeling RandomAccessLabeling
	next     uint64
	n        uint64
	node     uint64
	succ     []Arc
}

// LendSequentially returns a Lender that walks l by calling Labels at
// each node, starting at node from.
func LendSequentially(l RandomAccessLabeling, from uint64) Lender {
	return &randomAccessLender{labeling: l, next: from, n: l.NumNodes()}
}

func (r *randomAccessLender) Next() bool {
	if r.next >= r.n {
		return false
	}
	r.node = r.next
	r.succ = r.labeling.Labels(r.node)
	r.next++
	return true
}

func (r *randomAccessLender) Node() uint64       { return r.node }
func (r *randomAccessLender) Successors() []Arc  { return r.succ }
func (r *randomAccessLender) Err() error         { return nil }
