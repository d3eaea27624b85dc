package bvgraph

import (
	"bytes"
	"io"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/base/traverse"
	"v.io/x/lib/vlog"

	"github.com/dsi-unimi/bvgraph-go/bitio"
	"github.com/dsi-unimi/bvgraph-go/bvgerrs"
	"github.com/dsi-unimi/bvgraph-go/graph"
)

// partitionResult is one worker's output: its encoded graph and offsets
// bitstreams plus the bookkeeping the merge step needs to concatenate
// them, mirroring bvcomp.rs's per-thread
// (first_node, last_node, written_bits, offsets_bits, num_arcs) tuple.
type partitionResult struct {
	firstNode, lastNode uint64
	graphBuf, offsetsBuf *bytes.Buffer
	stats               CompStats
}

// ParallelCompress splits g into parts contiguous partitions (via
// graph.Split) and compresses each independently with its own Compressor
// before a merge step concatenates the per-partition bitstreams at the
// bit level, following spec §4.6's parallel-compression description:
// the graph streams are joined with bitio.Writer.CopyFrom and the
// offsets streams are joined behind a single leading γ-zero sentinel.
// Partitions are required to be strictly adjacent (partition i+1's first
// node equal to partition i's last node + 1); ParallelCompress enforces
// this itself rather than trusting graph.Split, since a future Split
// change that produces gaps would otherwise corrupt the merged graph
// silently.
func ParallelCompress(g graph.SequentialLabeling, graphOut, offsetsOut io.Writer, opts Options, parts int) (CompStats, error) {
	n := g.NumNodes()
	ranges := graph.Split(n, parts)
	results := make([]*partitionResult, len(ranges))

	err := traverse.Each(len(ranges), func(i int) error {
		rng := ranges[i]
		if rng.Start >= rng.End {
			results[i] = &partitionResult{firstNode: rng.Start, lastNode: rng.Start, graphBuf: &bytes.Buffer{}, offsetsBuf: &bytes.Buffer{}}
			return nil
		}
		var graphBuf, offsetsBuf bytes.Buffer
		c, err := NewCompressor(&graphBuf, &offsetsBuf, opts, rng.Start)
		if err != nil {
			return err
		}
		it := g.IterFrom(rng.Start)
		for it.Next() && it.Node() < rng.End {
			arcs := it.Successors()
			succ := make([]uint64, len(arcs))
			for j, a := range arcs {
				succ[j] = a.To
			}
			if err := c.Push(succ); err != nil {
				return err
			}
		}
		if err := it.Err(); err != nil {
			return err
		}
		stats, err := c.Flush()
		if err != nil {
			return err
		}
		vlog.VI(1).Infof("bvgraph: partition %d compressed nodes [%d,%d) into %d bits", i, rng.Start, rng.End, stats.WrittenBits)
		results[i] = &partitionResult{
			firstNode:  rng.Start,
			lastNode:   rng.End - 1,
			graphBuf:   &graphBuf,
			offsetsBuf: &offsetsBuf,
			stats:      stats,
		}
		return nil
	})
	if err != nil {
		return CompStats{}, err
	}

	return mergePartitions(results, graphOut, offsetsOut)
}

// mergePartitions drains results in order, checking strict adjacency and
// concatenating each partition's bitstreams onto the shared output
// streams.
func mergePartitions(results []*partitionResult, graphOut, offsetsOut io.Writer) (CompStats, error) {
	var total CompStats
	digest := seahash.New()
	graphW := bitio.NewWriter(io.MultiWriter(graphOut, digest), bitio.BigEndian)
	offsetsW, err := newOffsetsWriter(offsetsOut)
	if err != nil {
		return total, err
	}

	var expectedNext uint64
	first := true
	for _, res := range results {
		if res.stats.NumNodes == 0 {
			continue
		}
		if !first && res.firstNode != expectedNext {
			return total, bvgerrs.E(bvgerrs.KindInvariant, "bvgraph.mergePartitions", "partition boundary is not adjacent to the previous partition")
		}
		first = false
		expectedNext = res.lastNode + 1

		graphR := bitio.NewReader(res.graphBuf.Bytes(), bitio.BigEndian)
		if _, err := graphW.CopyFrom(graphR, res.stats.WrittenBits); err != nil {
			return total, err
		}

		// Each partition's offsets stream carries its own leading γ-zero
		// sentinel (exactly one bit, since γ(0) is a single 1-bit); skip
		// it here so only one sentinel survives the merge.
		offsetsR := bitio.NewReader(res.offsetsBuf.Bytes(), bitio.BigEndian)
		offsetsR.SkipBits(1)
		remaining := res.stats.OffsetsWrittenBits
		if _, err := offsetsW.w.CopyFrom(offsetsR, remaining); err != nil {
			return total, err
		}

		total.NumNodes += res.stats.NumNodes
		total.NumArcs += res.stats.NumArcs
		total.WrittenBits += res.stats.WrittenBits
		total.OffsetsWrittenBits += res.stats.OffsetsWrittenBits
		total.OutdegreeBits += res.stats.OutdegreeBits
	}

	if err := graphW.Flush(); err != nil {
		return total, err
	}
	if err := offsetsW.flush(); err != nil {
		return total, err
	}
	total.Digest = digest.Sum64()
	return total, nil
}
