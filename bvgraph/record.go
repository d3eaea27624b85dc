package bvgraph

import (
	"github.com/dsi-unimi/bvgraph-go/bitio"
	"github.com/dsi-unimi/bvgraph-go/bvgerrs"
	"github.com/dsi-unimi/bvgraph-go/codes"
)

// resolveRef fetches the already-decoded successor list of refNode so a
// record can reconstruct its copy blocks against it. The sequential
// decoder answers from its window ring; the random-access decoder answers
// by recursively decoding refNode's own record.
type resolveRef func(refNode uint64) ([]uint64, error)

// decodeRecord reads one node's record from r and returns its successor
// list in ascending order, following spec §4.5's six-step algorithm:
// outdegree, reference Δ, blocks, intervals, residuals, sorted-union
// merge. It is the exact inverse of compressor.write.
func decodeRecord(r *bitio.Reader, opts Options, currNode uint64, resolve resolveRef) ([]uint64, error) {
	outdegree, err := codes.ReadOf(opts.OutdegreeCode, r, 0)
	if err != nil {
		return nil, err
	}
	if outdegree == 0 {
		return nil, nil
	}

	var copied []uint64
	if opts.WindowSize > 0 {
		delta, err := codes.ReadOf(opts.ReferenceCode, r, 0)
		if err != nil {
			return nil, err
		}
		if delta > 0 {
			if delta > uint64(currNode) {
				return nil, bvgerrs.E(bvgerrs.KindFormat, "bvgraph.decodeRecord", "reference delta exceeds current node")
			}
			refList, err := resolve(currNode - delta)
			if err != nil {
				return nil, err
			}
			copied, err = decodeBlocks(r, opts, refList)
			if err != nil {
				return nil, err
			}
		}
	}

	// compressor.write emits interval fields only when some successors are
	// left over after the copy blocks.
	var intervals []uint64
	intervalCount := 0
	if int(outdegree) > len(copied) {
		intervals, intervalCount, err = decodeIntervals(r, opts, currNode)
		if err != nil {
			return nil, err
		}
	}

	residualCount := int(outdegree) - len(copied) - intervalCount
	if residualCount < 0 {
		return nil, bvgerrs.E(bvgerrs.KindFormat, "bvgraph.decodeRecord", "outdegree inconsistent with decoded copy/interval contributions")
	}
	residuals, err := decodeResiduals(r, opts, currNode, residualCount)
	if err != nil {
		return nil, err
	}

	return mergeSortedUnion(copied, intervals, residuals), nil
}

// decodeBlocks reads the block-count and block-length sequence and
// applies it against refList, alternating copy/skip starting with a copy
// block; an implicit trailing copy block consumes whatever remains once
// the explicit blocks are exhausted.
func decodeBlocks(r *bitio.Reader, opts Options, refList []uint64) ([]uint64, error) {
	count, err := codes.ReadOf(opts.BlockCode, r, 0)
	if err != nil {
		return nil, err
	}
	var copied []uint64
	pos := 0
	copying := true
	for i := uint64(0); i < count; i++ {
		wire, err := codes.ReadOf(opts.BlockCode, r, 0)
		if err != nil {
			return nil, err
		}
		blockLen := wire
		if i > 0 {
			blockLen++
		}
		if pos+int(blockLen) > len(refList) {
			return nil, bvgerrs.E(bvgerrs.KindFormat, "bvgraph.decodeBlocks", "block length exceeds referenced list")
		}
		if copying {
			copied = append(copied, refList[pos:pos+int(blockLen)]...)
		}
		pos += int(blockLen)
		copying = !copying
	}
	if copying {
		copied = append(copied, refList[pos:]...)
	}
	return copied, nil
}

// decodeIntervals reads the interval count and, for each interval, its
// (start, length) pair, returning the concatenation of every interval's
// expanded ids in ascending order plus their total element count.
func decodeIntervals(r *bitio.Reader, opts Options, currNode uint64) ([]uint64, int, error) {
	if opts.MinIntervalLength == NoIntervals {
		return nil, 0, nil
	}
	count, err := codes.ReadOf(opts.IntervalCode, r, uint64(opts.ZetaK))
	if err != nil {
		return nil, 0, err
	}
	if count == 0 {
		return nil, 0, nil
	}
	var out []uint64
	total := 0

	startNat, err := codes.ReadOf(opts.IntervalCode, r, uint64(opts.ZetaK))
	if err != nil {
		return nil, 0, err
	}
	start := uint64(int64(currNode) + codes.FromNat(startNat))
	lengthMinusL, err := codes.ReadOf(opts.IntervalCode, r, uint64(opts.ZetaK))
	if err != nil {
		return nil, 0, err
	}
	length := lengthMinusL + uint64(opts.MinIntervalLength)
	for v := start; v < start+length; v++ {
		out = append(out, v)
	}
	total += int(length)
	prevEnd := start + length

	for i := uint64(1); i < count; i++ {
		gap, err := codes.ReadOf(opts.IntervalCode, r, uint64(opts.ZetaK))
		if err != nil {
			return nil, 0, err
		}
		start := prevEnd + gap + 1
		lengthMinusL, err := codes.ReadOf(opts.IntervalCode, r, uint64(opts.ZetaK))
		if err != nil {
			return nil, 0, err
		}
		length := lengthMinusL + uint64(opts.MinIntervalLength)
		for v := start; v < start+length; v++ {
			out = append(out, v)
		}
		total += int(length)
		prevEnd = start + length
	}
	return out, total, nil
}

// decodeResiduals reads exactly n residual ids, the first relative to
// currNode and the rest as successive gaps.
func decodeResiduals(r *bitio.Reader, opts Options, currNode uint64, n int) ([]uint64, error) {
	if n == 0 {
		return nil, nil
	}
	out := make([]uint64, 0, n)
	firstNat, err := codes.ReadOf(opts.ResidualCode, r, uint64(opts.ZetaK))
	if err != nil {
		return nil, err
	}
	prev := uint64(int64(currNode) + codes.FromNat(firstNat))
	out = append(out, prev)
	for i := 1; i < n; i++ {
		gap, err := codes.ReadOf(opts.ResidualCode, r, uint64(opts.ZetaK))
		if err != nil {
			return nil, err
		}
		prev = prev + gap + 1
		out = append(out, prev)
	}
	return out, nil
}

// mergeSortedUnion merges up to three already-sorted, duplicate-free id
// slices into one sorted slice. copy, intervals and residuals never
// overlap by construction (they partition the outdegree), so this is a
// plain k-way merge rather than a dedup.
func mergeSortedUnion(a, b, c []uint64) []uint64 {
	out := make([]uint64, 0, len(a)+len(b)+len(c))
	lists := [][]uint64{a, b, c}
	idx := make([]int, len(lists))
	for {
		best := -1
		for li, l := range lists {
			if idx[li] >= len(l) {
				continue
			}
			if best == -1 || l[idx[li]] < lists[best][idx[best]] {
				best = li
			}
		}
		if best == -1 {
			break
		}
		out = append(out, lists[best][idx[best]])
		idx[best]++
	}
	return out
}
