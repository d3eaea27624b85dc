package llp

// Options controls one layered-label-propagation run, the Go counterpart
// of layered_label_propagation's parameter list in mod.rs.
type Options struct {
	// Gammas are the resolution values to run, one full label-propagation
	// pass per entry.
	Gammas []float64
	// ChunkSize bounds the per-goroutine shuffle chunk used to randomize
	// the update permutation each pass; 0 selects a 1,000,000-node
	// default, matching the original's `chunk_size.unwrap_or(1_000_000)`.
	ChunkSize int
	// Parallelism is the number of node ranges (one goroutine each) an
	// update pass is split into; 0 selects min(numNodes, 64). The gap-cost
	// computation does not read it and always uses min(numNodes, 64).
	Parallelism int
	// Seed is the starting value of the run's shuffle-seed counter.
	Seed uint64
	// Predicate decides when a γ's update loop stops.
	Predicate Predicate
	// WorkDir is where per-γ labels_{k}.bin artifacts are written by
	// RunLabelsOnly and read back by CombineLabels.
	WorkDir string
	// RecombineWithBest reproduces the Java reference's unconditional
	// "recombine with the best labeling after every combine step" trick
	// (mod.rs's combine_labels loop body). Defaulting this to false would
	// match the paper exactly but diverge from the original's observed
	// behavior; DefaultOptions sets it true to match the original.
	RecombineWithBest bool
}

// DefaultOptions returns the original's defaults: a 1,000,000-node shuffle
// chunk, Parallelism 0 (at most 64 ranges), and the recombine-with-best stability
// trick enabled.
func DefaultOptions() Options {
	return Options{
		ChunkSize:         1_000_000,
		RecombineWithBest: true,
	}
}

func (o Options) chunkSize() int {
	if o.ChunkSize <= 0 {
		return 1_000_000
	}
	return o.ChunkSize
}
