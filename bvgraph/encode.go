package bvgraph

import (
	"io"

	"blainsmith.com/go/seahash"

	"github.com/dsi-unimi/bvgraph-go/bitio"
	"github.com/dsi-unimi/bvgraph-go/graph"
)

// CompStats summarizes one compression run, the Go counterpart of
// bvcomp.rs's CompStats.
type CompStats struct {
	NumNodes           uint64
	NumArcs            uint64
	WrittenBits        int64
	OffsetsWrittenBits int64
	// OutdegreeBits is the summed bit length of every node's outdegree
	// field alone (not the whole record), the diagnostic total the
	// .properties file's bitsforoutdegrees key reports.
	OutdegreeBits int64
	// Digest is the seahash of the raw graph bitstream bytes, a cheap
	// pairing-integrity check between a .graph file and the .properties
	// sidecar that claims to describe it. CompressGraph and
	// ParallelCompress set it; Compressor.Flush and ChunkedCompress leave
	// it zero.
	Digest uint64
}

// Compressor is a streaming, greedy-window BV encoder: Push is called once
// per node in increasing order, and for each node it searches the last
// WindowSize successor lists for the reference that yields the fewest
// bits, writing the chosen record immediately. A direct port of
// bvcomp.rs's BvComp.
type Compressor struct {
	opts Options

	enc     *realWriter
	offsets *offsetsWriter

	// backrefs and refCounts are ring buffers of size WindowSize+1,
	// indexed by node % (WindowSize+1), holding the successor lists and
	// chain depths of the most recently pushed nodes.
	backrefs  [][]uint64
	refCounts []int

	// compressors[d] holds the scratch state for the candidate that
	// references the node d steps back; compressors[0] is also the
	// no-reference candidate.
	compressors []*compressor

	currNode  uint64
	startNode uint64

	stats CompStats
}

// NewCompressor creates a Compressor that writes the graph bitstream to
// graphOut and the offsets bitstream to offsetsOut, starting numbering at
// startNode (0 for a non-parallel compression run; ParallelCompress uses
// a nonzero startNode per partition).
func NewCompressor(graphOut, offsetsOut io.Writer, opts Options, startNode uint64) (*Compressor, error) {
	ow, err := newOffsetsWriter(offsetsOut)
	if err != nil {
		return nil, err
	}
	ringSize := opts.WindowSize + 1
	c := &Compressor{
		opts:        opts,
		enc:         &realWriter{w: bitio.NewWriter(graphOut, bitio.BigEndian), opts: opts},
		offsets:     ow,
		backrefs:    make([][]uint64, ringSize),
		refCounts:   make([]int, ringSize),
		compressors: make([]*compressor, ringSize),
		currNode:    startNode,
		startNode:   startNode,
	}
	for i := range c.compressors {
		c.compressors[i] = &compressor{}
	}
	return c, nil
}

// Push compresses and writes the record for the next node, whose sorted
// successor ids are succ. Nodes must be pushed in increasing order
// starting at the startNode passed to NewCompressor.
func (c *Compressor) Push(succ []uint64) error {
	ringSize := len(c.backrefs)
	idx := int(c.currNode % uint64(ringSize))

	c.backrefs[idx] = append(c.backrefs[idx][:0], succ...)
	currList := c.backrefs[idx]

	c.stats.NumNodes++
	c.stats.NumArcs += uint64(len(currList))

	comp0 := c.compressors[0]
	comp0.compress(currList, nil, c.opts.MinIntervalLength)

	if c.opts.WindowSize == 0 {
		written, err := comp0.write(c.enc, c.currNode, false, 0, c.opts.MinIntervalLength)
		if err != nil {
			return err
		}
		return c.finishNode(written)
	}

	est := &estimator{opts: c.opts}
	minBits, err := comp0.write(est, c.currNode, true, 0, c.opts.MinIntervalLength)
	if err != nil {
		return err
	}
	bestDelta := uint64(0)
	bestRefCount := 0

	maxDelta := c.opts.WindowSize
	if span := int(c.currNode - c.startNode); span < maxDelta {
		maxDelta = span
	}
	for delta := 1; delta <= maxDelta; delta++ {
		refNode := c.currNode - uint64(delta)
		refIdx := int(refNode % uint64(ringSize))
		count := c.refCounts[refIdx]
		if count >= c.opts.MaxRefCount {
			continue
		}
		refList := c.backrefs[refIdx]
		if len(refList) == 0 {
			continue
		}
		cand := c.compressors[delta]
		cand.compress(currList, refList, c.opts.MinIntervalLength)
		bits, err := cand.write(est, c.currNode, true, uint64(delta), c.opts.MinIntervalLength)
		if err != nil {
			return err
		}
		if bits < minBits {
			minBits = bits
			bestDelta = uint64(delta)
			bestRefCount = count + 1
		}
	}

	chosen := c.compressors[bestDelta]
	written, err := chosen.write(c.enc, c.currNode, true, bestDelta, c.opts.MinIntervalLength)
	if err != nil {
		return err
	}
	c.refCounts[idx] = bestRefCount
	return c.finishNode(written)
}

func (c *Compressor) finishNode(written int) error {
	n, err := c.offsets.push(uint64(written))
	if err != nil {
		return err
	}
	c.stats.WrittenBits += int64(written)
	c.stats.OffsetsWrittenBits += int64(n)
	c.stats.OutdegreeBits += int64(c.enc.lastOutdegreeBits)
	c.currNode++
	return nil
}

// Flush finalizes both bitstreams and returns the accumulated stats.
func (c *Compressor) Flush() (CompStats, error) {
	if err := c.enc.w.Flush(); err != nil {
		return c.stats, err
	}
	if err := c.offsets.flush(); err != nil {
		return c.stats, err
	}
	return c.stats, nil
}

// CompressGraph drives a Compressor over every node of g in order and
// returns the final stats, a convenience wrapper for the common
// non-parallel, non-chunked case.
func CompressGraph(g graph.SequentialLabeling, graphOut, offsetsOut io.Writer, opts Options) (CompStats, error) {
	digest := seahash.New()
	c, err := NewCompressor(io.MultiWriter(graphOut, digest), offsetsOut, opts, 0)
	if err != nil {
		return CompStats{}, err
	}
	it := g.Iter()
	for it.Next() {
		arcs := it.Successors()
		succ := make([]uint64, len(arcs))
		for i, a := range arcs {
			succ[i] = a.To
		}
		if err := c.Push(succ); err != nil {
			return c.stats, err
		}
	}
	if err := it.Err(); err != nil {
		return c.stats, err
	}
	stats, err := c.Flush()
	if err != nil {
		return stats, err
	}
	stats.Digest = digest.Sum64()
	return stats, nil
}
