package bvgraph

import (
	"io"

	"github.com/dsi-unimi/bvgraph-go/bitio"
	"github.com/dsi-unimi/bvgraph-go/graph"
)

// ChunkedCompress is the alternative to the greedy window encoder. It
// buffers chunkSize nodes at a time and only lets a node reference earlier
// nodes of its own chunk (the first node of a chunk never uses a
// reference). Within a chunk it makes the same greedy per-node choice the
// plain Compressor makes (cheapest Δ subject to depth < MaxRefCount), then
// runs applyBestSubstitution, which never changes that choice (see its
// comment), so the records written are the greedy ones. Reference choices
// are not searched exhaustively.
func ChunkedCompress(g graph.SequentialLabeling, graphOut, offsetsOut io.Writer, opts Options, chunkSize int) (CompStats, error) {
	ce, err := newChunkedEncoder(graphOut, offsetsOut, opts)
	if err != nil {
		return CompStats{}, err
	}

	it := g.Iter()
	var chunk [][]uint64
	chunkStart := uint64(0)

	flushChunk := func() error {
		if len(chunk) == 0 {
			return nil
		}
		if err := ce.compressChunk(chunkStart, chunk); err != nil {
			return err
		}
		chunk = chunk[:0]
		return nil
	}

	for it.Next() {
		if len(chunk) == 0 {
			chunkStart = it.Node()
		}
		arcs := it.Successors()
		succ := make([]uint64, len(arcs))
		for i, a := range arcs {
			succ[i] = a.To
		}
		chunk = append(chunk, succ)
		if len(chunk) == chunkSize {
			if err := flushChunk(); err != nil {
				return ce.stats, err
			}
		}
	}
	if err := it.Err(); err != nil {
		return ce.stats, err
	}
	if err := flushChunk(); err != nil {
		return ce.stats, err
	}
	return ce.Flush()
}

type chunkedEncoder struct {
	opts Options

	enc     *realWriter
	offsets *offsetsWriter

	ringSize   uint64
	ringLists  [][]uint64
	ringDepths []int

	scratch *compressor
	stats   CompStats
}

func newChunkedEncoder(graphOut, offsetsOut io.Writer, opts Options) (*chunkedEncoder, error) {
	ow, err := newOffsetsWriter(offsetsOut)
	if err != nil {
		return nil, err
	}
	ringSize := uint64(opts.WindowSize + 1)
	return &chunkedEncoder{
		opts:       opts,
		enc:        &realWriter{w: bitio.NewWriter(graphOut, bitio.BigEndian), opts: opts},
		offsets:    ow,
		ringSize:   ringSize,
		ringLists:  make([][]uint64, ringSize),
		ringDepths: make([]int, ringSize),
		scratch:    &compressor{},
	}, nil
}

// choice is one node's planned encoding within a chunk.
type choice struct {
	delta uint64
	depth int
	cost  int
}

// compressChunk plans every node's encoding, looks for one improving
// substitution, then writes the chosen records in node order.
func (ce *chunkedEncoder) compressChunk(chunkStart uint64, lists [][]uint64) error {
	n := len(lists)
	choices := make([]choice, n)

	refListFor := func(pos int, delta uint64) ([]uint64, bool) {
		refGlobal := chunkStart + uint64(pos) - delta
		if refGlobal < chunkStart {
			return ce.ringLists[refGlobal%ce.ringSize], true
		}
		return lists[refGlobal-chunkStart], true
	}
	refDepthFor := func(pos int, delta uint64) int {
		refGlobal := chunkStart + uint64(pos) - delta
		if refGlobal < chunkStart {
			return ce.ringDepths[refGlobal%ce.ringSize]
		}
		return choices[refGlobal-chunkStart].depth
	}

	est := &estimator{opts: ce.opts}

	costOf := func(pos int, delta uint64) (int, bool) {
		currList := lists[pos]
		if delta == 0 {
			ce.scratch.compress(currList, nil, ce.opts.MinIntervalLength)
			bits, err := ce.scratch.write(est, chunkStart+uint64(pos), ce.opts.WindowSize > 0, 0, ce.opts.MinIntervalLength)
			if err != nil {
				return 0, false
			}
			return bits, true
		}
		refDepth := refDepthFor(pos, delta)
		if refDepth >= ce.opts.MaxRefCount {
			return 0, false
		}
		refList, ok := refListFor(pos, delta)
		if !ok || len(refList) == 0 {
			return 0, false
		}
		ce.scratch.compress(currList, refList, ce.opts.MinIntervalLength)
		bits, err := ce.scratch.write(est, chunkStart+uint64(pos), true, delta, ce.opts.MinIntervalLength)
		if err != nil {
			return 0, false
		}
		return bits, true
	}

	// Greedy baseline: cheapest feasible delta per node, in order.
	for i := range lists {
		best := choice{delta: 0, depth: 0}
		best.cost, _ = costOf(i, 0)
		maxDelta := ce.opts.WindowSize
		if i < maxDelta {
			maxDelta = i
		}
		for delta := 1; delta <= maxDelta; delta++ {
			bits, ok := costOf(i, uint64(delta))
			if !ok {
				continue
			}
			if bits < best.cost {
				best = choice{delta: uint64(delta), depth: refDepthFor(i, uint64(delta)) + 1, cost: bits}
			}
		}
		choices[i] = best
	}

	ce.applyBestSubstitution(chunkStart, lists, choices, costOf, refDepthFor)

	for i, currList := range lists {
		node := chunkStart + uint64(i)
		c := choices[i]
		var refList []uint64
		if c.delta > 0 {
			refList, _ = refListFor(i, c.delta)
		}
		ce.scratch.compress(currList, refList, ce.opts.MinIntervalLength)
		written, err := ce.scratch.write(ce.enc, node, ce.opts.WindowSize > 0, c.delta, ce.opts.MinIntervalLength)
		if err != nil {
			return err
		}
		if err := ce.recordNode(node, currList, c.depth, written); err != nil {
			return err
		}
	}
	return nil
}

// applyBestSubstitution looks for one node j whose greedy depth is
// MaxRefCount-1, an alternative delta for j with depth < MaxRefCount-1,
// and one later node i in the window that would switch to referencing j,
// applying the pair only if i's saving exceeds j's extra cost. Nodes at
// depth MaxRefCount-1 can already be referenced, so the greedy pass has
// priced every such i→j reference, and it gave j its cheapest feasible
// encoding; the computed savings are therefore never positive and choices
// is left unchanged.
func (ce *chunkedEncoder) applyBestSubstitution(chunkStart uint64, lists [][]uint64, choices []choice, costOf func(int, uint64) (int, bool), refDepthFor func(int, uint64) int) {
	if ce.opts.WindowSize == 0 || ce.opts.MaxRefCount <= 1 {
		return
	}
	bestSavings := 0
	bestJ, bestI := -1, -1
	var bestJChoice, bestIChoice choice

	for j := range lists {
		if choices[j].depth != ce.opts.MaxRefCount-1 {
			continue
		}
		// Find j's cheapest alternative with strictly lower depth.
		altFound := false
		var alt choice
		maxDelta := ce.opts.WindowSize
		if j < maxDelta {
			maxDelta = j
		}
		for delta := 0; delta <= maxDelta; delta++ {
			if delta == choices[j].delta {
				continue
			}
			var depth int
			if delta == 0 {
				depth = 0
			} else {
				depth = refDepthFor(j, uint64(delta)) + 1
			}
			if depth >= ce.opts.MaxRefCount-1 {
				continue
			}
			bits, ok := costOf(j, uint64(delta))
			if !ok {
				continue
			}
			if !altFound || bits < alt.cost {
				alt = choice{delta: uint64(delta), depth: depth, cost: bits}
				altFound = true
			}
		}
		if !altFound {
			continue
		}
		extraCostAtJ := alt.cost - choices[j].cost

		last := j + ce.opts.WindowSize
		if last >= len(lists) {
			last = len(lists) - 1
		}
		for i := j + 1; i <= last; i++ {
			delta := uint64(i - j)
			bits, ok := costOf(i, delta)
			if !ok {
				continue
			}
			savings := choices[i].cost - bits - extraCostAtJ
			if savings > bestSavings {
				bestSavings = savings
				bestJ, bestI = j, i
				bestJChoice = alt
				bestIChoice = choice{delta: delta, depth: alt.depth + 1, cost: bits}
			}
		}
	}

	if bestJ >= 0 {
		choices[bestJ] = bestJChoice
		choices[bestI] = bestIChoice
	}
}

func (ce *chunkedEncoder) recordNode(node uint64, currList []uint64, depth, written int) error {
	idx := node % ce.ringSize
	ce.ringLists[idx] = append(ce.ringLists[idx][:0], currList...)
	ce.ringDepths[idx] = depth

	n, err := ce.offsets.push(uint64(written))
	if err != nil {
		return err
	}
	ce.stats.NumNodes++
	ce.stats.NumArcs += uint64(len(currList))
	ce.stats.WrittenBits += int64(written)
	ce.stats.OffsetsWrittenBits += int64(n)
	ce.stats.OutdegreeBits += int64(ce.enc.lastOutdegreeBits)
	return nil
}

func (ce *chunkedEncoder) Flush() (CompStats, error) {
	if err := ce.enc.w.Flush(); err != nil {
		return ce.stats, err
	}
	if err := ce.offsets.flush(); err != nil {
		return ce.stats, err
	}
	return ce.stats, nil
}
