package bvgraph

import "github.com/dsi-unimi/bvgraph-go/codes"

// compressor computes how to encode one node's successor list, optionally
// relative to a reference list, and then writes the result to a
// recordWriter. It is a direct, renamed port of bvcomp.rs's Compressor:
// the same struct is reused across candidate references (one per ring
// slot) instead of reallocated, since diff_comp/intervalize run once per
// candidate Δ during encoding.
type compressor struct {
	outdegree    int
	blocks       []uint64
	extraNodes   []uint64
	leftInterval []uint64
	lenInterval  []uint64
	residuals    []uint64
}

func (c *compressor) clear() {
	c.outdegree = 0
	c.blocks = c.blocks[:0]
	c.extraNodes = c.extraNodes[:0]
	c.leftInterval = c.leftInterval[:0]
	c.lenInterval = c.lenInterval[:0]
	c.residuals = c.residuals[:0]
}

// compress populates c's fields for currList, optionally copying/skipping
// against refList (nil if this candidate does not reference anything).
func (c *compressor) compress(currList, refList []uint64, minIntervalLength int) {
	c.clear()
	c.outdegree = len(currList)
	if c.outdegree == 0 {
		return
	}
	if refList != nil {
		c.diffComp(currList, refList)
	} else {
		c.extraNodes = append(c.extraNodes, currList...)
	}
	if len(c.extraNodes) == 0 {
		return
	}
	if minIntervalLength != NoIntervals {
		c.intervalize(minIntervalLength)
	} else {
		c.residuals = append(c.residuals, c.extraNodes...)
	}
}

// diffComp walks currList against refList with two pointers, alternating
// between copy blocks (runs present in both) and skip blocks (runs of
// refList not present in currList); elements of currList absent from
// refList fall into extraNodes. Mirrors bvcomp.rs's diff_comp exactly,
// including the "bias the first block length by +1" trick that lets the
// decoder tell a leading skip block (impossible — block 0 is always a
// copy block) apart from a leading copy block of length 0.
func (c *compressor) diffComp(currList, refList []uint64) {
	j, k := 0, 0
	currBlockLen := 0
	copying := true

	for j < len(currList) && k < len(refList) {
		if copying {
			switch {
			case currList[j] > refList[k]:
				c.blocks = append(c.blocks, uint64(currBlockLen))
				copying = false
				currBlockLen = 0
			case currList[j] < refList[k]:
				c.extraNodes = append(c.extraNodes, currList[j])
				j++
			default:
				j++
				k++
				currBlockLen++
			}
		} else {
			switch {
			case currList[j] > refList[k]:
				k++
				currBlockLen++
			case currList[j] < refList[k]:
				c.extraNodes = append(c.extraNodes, currList[j])
				j++
			default:
				c.blocks = append(c.blocks, uint64(currBlockLen))
				copying = true
				currBlockLen = 0
			}
		}
	}
	if copying && k < len(refList) {
		c.blocks = append(c.blocks, uint64(currBlockLen))
	}
	for ; j < len(currList); j++ {
		c.extraNodes = append(c.extraNodes, currList[j])
	}
	if len(c.blocks) > 0 {
		c.blocks[0]++
	}
}

// intervalize scans extraNodes for maximal runs of consecutive integers;
// runs of at least minIntervalLength become (start, length) intervals,
// everything else falls through to residuals.
func (c *compressor) intervalize(minIntervalLength int) {
	vl := len(c.extraNodes)
	i := 0
	for i < vl {
		j := 0
		if i < vl-1 && c.extraNodes[i]+1 == c.extraNodes[i+1] {
			j++
			for i+j < vl-1 && c.extraNodes[i+j]+1 == c.extraNodes[i+j+1] {
				j++
			}
			j++
			if j >= minIntervalLength {
				c.leftInterval = append(c.leftInterval, c.extraNodes[i])
				c.lenInterval = append(c.lenInterval, uint64(j))
				i += j - 1
			}
		}
		if j < minIntervalLength {
			c.residuals = append(c.residuals, c.extraNodes[i])
		}
		i++
	}
}

// write emits the record for currNode to w, in the same field order
// load.rs's sequential decoder reads them back in. hasRef distinguishes
// "no reference field at all" (window size 0) from "a reference field
// whose value happens to be 0" (the no-reference sentinel the decoder
// checks for), exactly as bvcomp.rs's write takes an
// Option<reference_offset>.
func (c *compressor) write(w recordWriter, currNode uint64, hasRef bool, refOffset uint64, minIntervalLength int) (int, error) {
	written := 0

	add := func(n int, err error) error {
		written += n
		return err
	}

	if err := add(w.writeOutdegree(uint64(c.outdegree))); err != nil {
		return written, err
	}
	if c.outdegree != 0 && hasRef {
		if err := add(w.writeReferenceOffset(refOffset)); err != nil {
			return written, err
		}
		if refOffset != 0 {
			if err := add(w.writeBlockCount(uint64(len(c.blocks)))); err != nil {
				return written, err
			}
			for _, b := range c.blocks {
				if err := add(w.writeBlock(b - 1)); err != nil {
					return written, err
				}
			}
		}
	}

	if len(c.extraNodes) != 0 && minIntervalLength != NoIntervals {
		if err := add(w.writeIntervalCount(uint64(len(c.leftInterval)))); err != nil {
			return written, err
		}
		if len(c.leftInterval) > 0 {
			if err := add(w.writeIntervalStart(codes.ToNat(int64(c.leftInterval[0]) - int64(currNode)))); err != nil {
				return written, err
			}
			if err := add(w.writeIntervalLen(c.lenInterval[0] - uint64(minIntervalLength))); err != nil {
				return written, err
			}
			prev := c.leftInterval[0] + c.lenInterval[0]
			for i := 1; i < len(c.leftInterval); i++ {
				if err := add(w.writeIntervalStart(c.leftInterval[i] - prev - 1)); err != nil {
					return written, err
				}
				if err := add(w.writeIntervalLen(c.lenInterval[i] - uint64(minIntervalLength))); err != nil {
					return written, err
				}
				prev = c.leftInterval[i] + c.lenInterval[i]
			}
		}
	}

	if len(c.residuals) > 0 {
		if err := add(w.writeFirstResidual(codes.ToNat(int64(c.residuals[0]) - int64(currNode)))); err != nil {
			return written, err
		}
		for i := 1; i < len(c.residuals); i++ {
			if err := add(w.writeResidual(c.residuals[i] - c.residuals[i-1] - 1)); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}
