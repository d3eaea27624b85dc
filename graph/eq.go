package graph

import "fmt"

// EqMismatch reports the first discrepancy EqSorted or CheckImpl finds,
// the Go counterpart of labels.rs's EqError/CheckImplError enums.
type EqMismatch struct {
	// Field names which comparison failed: "num_nodes", "num_arcs",
	// "outdegree", or "successor".
	Field      string
	Node       uint64
	Index      int
	Want, Got  interface{}
}

func (e *EqMismatch) Error() string {
	if e.Field == "num_nodes" || e.Field == "num_arcs" {
		return fmt.Sprintf("graph: %s mismatch: want %v, got %v", e.Field, e.Want, e.Got)
	}
	if e.Field == "outdegree" {
		return fmt.Sprintf("graph: node %d: outdegree mismatch: want %v, got %v", e.Node, e.Want, e.Got)
	}
	return fmt.Sprintf("graph: node %d: successor %d mismatch: want %v, got %v", e.Node, e.Index, e.Want, e.Got)
}

// EqSorted reports whether a and b are the same sorted labeling: same node
// count and, for every node in order, the same successor list in the same
// order. It is the Go counterpart of eq_sorted/eq_succs: the two labelings
// are walked in lockstep rather than materialized, so EqSorted is usable on
// labelings too large to hold in memory twice.
func EqSorted(a, b SequentialLabeling) error {
	if a.NumNodes() != b.NumNodes() {
		return &EqMismatch{Field: "num_nodes", Want: a.NumNodes(), Got: b.NumNodes()}
	}
	la, lb := a.Iter(), b.Iter()
	for {
		okA, okB := la.Next(), lb.Next()
		if okA != okB {
			return &EqMismatch{Field: "num_nodes", Want: okA, Got: okB}
		}
		if !okA {
			break
		}
		if la.Node() != lb.Node() {
			return &EqMismatch{Field: "num_nodes", Node: la.Node(), Want: la.Node(), Got: lb.Node()}
		}
		if err := eqSuccessors(la.Node(), la.Successors(), lb.Successors()); err != nil {
			return err
		}
	}
	if err := la.Err(); err != nil {
		return err
	}
	return lb.Err()
}

func eqSuccessors(node uint64, sa, sb []Arc) error {
	if len(sa) != len(sb) {
		return &EqMismatch{Field: "outdegree", Node: node, Want: len(sa), Got: len(sb)}
	}
	for i := range sa {
		if sa[i].To != sb[i].To {
			return &EqMismatch{Field: "successor", Node: node, Index: i, Want: sa[i].To, Got: sb[i].To}
		}
	}
	return nil
}

// CheckImpl cross-checks a RandomAccessLabeling's two access paths against
// each other: it walks l sequentially via Iter, and at each node verifies
// Outdegree/Labels agree with what the sequential pass just produced, the
// Go counterpart of labels.rs's check_impl.
func CheckImpl(l RandomAccessLabeling) error {
	it := l.Iter()
	var seenNodes, seenArcs uint64
	for it.Next() {
		node := it.Node()
		succ := it.Successors()
		if deg := l.Outdegree(node); deg != len(succ) {
			return &EqMismatch{Field: "outdegree", Node: node, Want: len(succ), Got: deg}
		}
		if err := eqSuccessors(node, succ, l.Labels(node)); err != nil {
			return err
		}
		seenNodes++
		seenArcs += uint64(len(succ))
	}
	if err := it.Err(); err != nil {
		return err
	}
	if seenNodes != l.NumNodes() {
		return &EqMismatch{Field: "num_nodes", Want: l.NumNodes(), Got: seenNodes}
	}
	if seenArcs != l.NumArcs() {
		return &EqMismatch{Field: "num_arcs", Want: l.NumArcs(), Got: seenArcs}
	}
	return nil
}
