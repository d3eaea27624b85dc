package llp

// PredParams is the information available to a stopping predicate after an
// update pass: the graph size, the pass's objective-function gain, a
// moving-average gain improvement, how many nodes changed label, and the
// update index (0-based). Mirrors original_source/algo/src/llp/preds.rs's
// PredParams, retrieved only by name in mod.rs (the file itself was not
// part of the pack) so the field set here is inferred from its call site:
// `predicate.eval(&PredParams{num_nodes, num_arcs, gain, avg_gain_impr,
// modified, update})`.
type PredParams struct {
	NumNodes uint64
	NumArcs  uint64
	Gain     float64
	// AvgGainImprovement is the mean, over the last few updates, of the
	// relative change in Gain between consecutive updates.
	AvgGainImprovement float64
	Modified           uint64
	Update             int
}

// Predicate decides whether a γ's update loop should stop. Run calls Eval
// after every update pass.
type Predicate interface {
	Eval(p PredParams) bool
}

// MaxUpdates stops once the update index reaches the given count.
type MaxUpdates int

func (m MaxUpdates) Eval(p PredParams) bool { return p.Update >= int(m) }

// MinGain stops once the pass's gain drops at or below the threshold.
type MinGain float64

func (m MinGain) Eval(p PredParams) bool { return p.Gain <= float64(m) }

// MinAvgGainImprovement stops once the moving-average gain improvement
// drops at or below the threshold.
type MinAvgGainImprovement float64

func (m MinAvgGainImprovement) Eval(p PredParams) bool { return p.AvgGainImprovement <= float64(m) }

// MinModified stops once fewer than the given number of nodes changed
// label in a pass.
type MinModified uint64

func (m MinModified) Eval(p PredParams) bool { return p.Modified < uint64(m) }

// PercentModified stops once the fraction of nodes that changed label in a
// pass drops at or below the given percentage of NumNodes.
type PercentModified float64

func (m PercentModified) Eval(p PredParams) bool {
	if p.NumNodes == 0 {
		return true
	}
	return float64(p.Modified)/float64(p.NumNodes)*100 <= float64(m)
}

// orPredicate fires once either of its two predicates fires, the Go
// counterpart of predicates::prelude::PredicateBooleanExt::or used by
// test_llp.rs's `MinGain::try_from(0.001)?.or(MaxUpdates::from(3))`.
type orPredicate struct{ a, b Predicate }

func (p orPredicate) Eval(params PredParams) bool { return p.a.Eval(params) || p.b.Eval(params) }

// Or combines a and b into a single predicate that fires as soon as
// either does.
func Or(a, b Predicate) Predicate { return orPredicate{a, b} }

// andPredicate fires only once both of its predicates fire.
type andPredicate struct{ a, b Predicate }

func (p andPredicate) Eval(params PredParams) bool { return p.a.Eval(params) && p.b.Eval(params) }

// And combines a and b into a single predicate that fires only once both
// do.
func And(a, b Predicate) Predicate { return andPredicate{a, b} }
