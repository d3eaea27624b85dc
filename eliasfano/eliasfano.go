// Package eliasfano implements the Elias-Fano monotone sequence used as
// the BV codec's offset index: given the N+1 running bit-length prefix
// sums of a graph's per-node records, it supports O(1) Get(i) and a
// successor query (Successor), in space close to the
// information-theoretic minimum for a monotone sequence. The pair
// sorter's merge step does not use Successor; it merges with an llrb tree.
//
// A value v is split into a high part v>>l and a low part v&((1<<l)-1).
// Low parts are packed contiguously, l bits each. High parts are
// represented in unary inside a single bit vector: pushing n values in
// increasing high-part order sets bit (highPart+i) for the i-th value,
// so the high parts can be recovered by a rank/select walk over the
// bit vector (see bitset.go).
package eliasfano

import (
	"bytes"
	"math/bits"

	"github.com/dsi-unimi/bvgraph-go/bitio"
	"github.com/dsi-unimi/bvgraph-go/bvgerrs"
)

// Index is a built, immutable Elias-Fano sequence.
type Index struct {
	n    int
	u    uint64
	l    uint
	low  []byte
	high *bitVector
	rs   *rankSelect
}

// Len returns the number of values in the sequence (N+1 for an offset
// index over an N-node graph).
func (idx *Index) Len() int { return idx.n }

// Max returns the upper bound the sequence was built with (the total
// graph bit length, for an offset index).
func (idx *Index) Max() uint64 { return idx.u }

// Get returns the i-th value in O(1): one select on the high-bits
// vector plus one fixed-width read of the low bits.
func (idx *Index) Get(i int) (uint64, error) {
	if i < 0 || i >= idx.n {
		return 0, bvgerrs.E(bvgerrs.KindInvariant, "eliasfano.Get", "index out of range")
	}
	pos, ok := idx.rs.select1(i)
	if !ok {
		return 0, bvgerrs.E(bvgerrs.KindFormat, "eliasfano.Get", "corrupt high-bits vector")
	}
	highPart := uint64(pos - i)
	lowPart := idx.readLow(i)
	return highPart<<idx.l | lowPart, nil
}

func (idx *Index) readLow(i int) uint64 {
	if idx.l == 0 {
		return 0
	}
	r := bitio.NewReader(idx.low, bitio.BigEndian)
	r.SetBitPos(int64(i) * int64(idx.l))
	v, _ := r.ReadBits(int(idx.l))
	return v
}

// Successor returns the smallest i such that Get(i) >= x, by binary
// search over the monotone sequence (each probe is an O(1) Get). It
// reports ok=false if x exceeds every stored value.
func (idx *Index) Successor(x uint64) (i int, v uint64, ok bool) {
	if idx.n == 0 {
		return 0, 0, false
	}
	lo, hi := 0, idx.n
	for lo < hi {
		mid := (lo + hi) / 2
		mv, _ := idx.Get(mid)
		if mv >= x {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	if lo == idx.n {
		return 0, 0, false
	}
	v, _ = idx.Get(lo)
	return lo, v, true
}

// Builder constructs an Index by streaming monotone non-decreasing
// values, one at a time, matching the way the offset index is built
// from a γ-decoded offsets bit stream without ever holding the whole
// sequence in memory as a plain slice.
type Builder struct {
	n        int
	u        uint64
	l        uint
	lowBuf   bytes.Buffer
	lowW     *bitio.Writer
	high     *bitVector
	count    int
	lastSeen uint64
	haveLast bool
}

// NewBuilder prepares a Builder for exactly n values in [0, u].
func NewBuilder(n int, u uint64) *Builder {
	l := lowWidth(n, u)
	b := &Builder{n: n, u: u, l: l, high: newBitVector(highVectorBits(n, u, l))}
	b.lowW = bitio.NewWriter(&b.lowBuf, bitio.BigEndian)
	return b
}

func lowWidth(n int, u uint64) uint {
	if n <= 1 || u == 0 {
		return 0
	}
	avg := u / uint64(n)
	if avg == 0 {
		return 0
	}
	return uint(bits.Len64(avg)) - 1
}

func highVectorBits(n int, u uint64, l uint) int {
	return n + int(u>>l) + 1
}

// Push appends the next value. Values must be pushed in non-decreasing
// order and must not exceed the upper bound given to NewBuilder.
func (b *Builder) Push(v uint64) error {
	if b.count >= b.n {
		return bvgerrs.E(bvgerrs.KindInvariant, "eliasfano.Builder.Push", "too many values")
	}
	if v > b.u {
		return bvgerrs.E(bvgerrs.KindInvariant, "eliasfano.Builder.Push", "value exceeds upper bound")
	}
	if b.haveLast && v < b.lastSeen {
		return bvgerrs.E(bvgerrs.KindInvariant, "eliasfano.Builder.Push", "sequence not monotone")
	}
	highPart := v >> b.l
	b.high.set(int(highPart) + b.count)
	if b.l > 0 {
		low := v & ((uint64(1) << b.l) - 1)
		if _, err := b.lowW.WriteBits(int(b.l), low); err != nil {
			return bvgerrs.E(bvgerrs.KindIO, "eliasfano.Builder.Push", err)
		}
	}
	b.lastSeen = v
	b.haveLast = true
	b.count++
	return nil
}

// Build finalizes the index. It is an error to call Build before
// exactly n values have been pushed.
func (b *Builder) Build() (*Index, error) {
	if b.count != b.n {
		return nil, bvgerrs.E(bvgerrs.KindInvariant, "eliasfano.Builder.Build", "incomplete sequence")
	}
	if err := b.lowW.Flush(); err != nil {
		return nil, bvgerrs.E(bvgerrs.KindIO, "eliasfano.Builder.Build", err)
	}
	return &Index{
		n:    b.n,
		u:    b.u,
		l:    b.l,
		low:  append([]byte(nil), b.lowBuf.Bytes()...),
		high: b.high,
		rs:   newRankSelect(b.high),
	}, nil
}

// Build is a convenience wrapper over Builder for callers that already
// hold the full monotone sequence in memory (e.g. tests).
func Build(values []uint64) (*Index, error) {
	if len(values) == 0 {
		return NewBuilder(0, 0).Build()
	}
	b := NewBuilder(len(values), values[len(values)-1])
	for _, v := range values {
		if err := b.Push(v); err != nil {
			return nil, err
		}
	}
	return b.Build()
}
