// Package codes implements the instantaneous codes the BV bit stream is
// built from: unary, gamma, delta, zeta (parameterized by k) and pi
// (parameterized by k), plus the minimal-binary primitive zeta and pi are
// built on. Every code exposes three pure functions, Len/Write/Read, with
// no hidden state and no allocation, the same shape as the per-field
// pure codecs in encoding/pam/fieldio.
//
// Two dispatch strategies are provided over the same functions: a
// runtime function-pointer table keyed by a Code enum (LenOf/WriteOf/
// ReadOf), for callers that pick a code at load time from a graph's
// .properties file, and a set of zero-sized Coder implementations
// (returned by CoderFor) for callers that know the code at compile
// time and want it inlined without a table lookup. Both paths call the
// same underlying functions and are therefore bit-for-bit identical.
package codes

import (
	"math/bits"

	"github.com/dsi-unimi/bvgraph-go/bitio"
	"github.com/dsi-unimi/bvgraph-go/bvgerrs"
)

// Code identifies an instantaneous code for dispatch-table lookups. Zeta
// and Pi take a parameter k, threaded through the generic arg slot (see
// LenFunc et al.); it is unused by the other codes.
type Code int

const (
	Unary Code = iota
	Gamma
	Delta
	Zeta
	Pi
	MinimalBinary
)

func (c Code) String() string {
	switch c {
	case Unary:
		return "unary"
	case Gamma:
		return "gamma"
	case Delta:
		return "delta"
	case Zeta:
		return "zeta"
	case Pi:
		return "pi"
	case MinimalBinary:
		return "minimal-binary"
	default:
		return "unknown"
	}
}

// ParseCode parses the names produced by Code.String, for reading codes
// back out of a .properties sidecar file.
func ParseCode(s string) (Code, error) {
	switch s {
	case "unary":
		return Unary, nil
	case "gamma":
		return Gamma, nil
	case "delta":
		return Delta, nil
	case "zeta":
		return Zeta, nil
	case "pi":
		return Pi, nil
	case "minimal-binary":
		return MinimalBinary, nil
	default:
		return 0, bvgerrs.E(bvgerrs.KindFormat, "codes.ParseCode", "unknown code name", s)
	}
}

// maxCodeable is the largest value any code here can represent; all of
// them internally form v+1, so v == ^uint64(0) would overflow.
const maxCodeable = ^uint64(0) - 1

// UnaryLen returns the number of bits WriteUnary(v) writes.
func UnaryLen(v uint64) int { return int(v) + 1 }

// WriteUnary writes v as a unary codeword (v zero bits then a one bit).
func WriteUnary(w *bitio.Writer, v uint64) (int, error) {
	return w.WriteUnary(int(v))
}

// ReadUnary reads a unary codeword.
func ReadUnary(r *bitio.Reader) (uint64, error) {
	n, err := r.ReadUnary()
	return uint64(n), err
}

// GammaLen returns the number of bits WriteGamma(v) writes.
func GammaLen(v uint64) int {
	l := bits.Len64(v + 1)
	return 2*l - 1
}

// WriteGamma writes v using Elias gamma coding: the bit length of v+1 in
// unary, followed by the low bits of v+1 with the leading one stripped.
func WriteGamma(w *bitio.Writer, v uint64) (int, error) {
	if v > maxCodeable {
		return 0, bvgerrs.E(bvgerrs.KindCapacity, "codes.WriteGamma", "value too large")
	}
	l := bits.Len64(v + 1)
	n1, err := w.WriteUnary(l - 1)
	if err != nil {
		return n1, err
	}
	rem := (v + 1) - (uint64(1) << uint(l-1))
	n2, err := w.WriteBits(l-1, rem)
	return n1 + n2, err
}

// ReadGamma reads a gamma-coded value.
func ReadGamma(r *bitio.Reader) (uint64, error) {
	l, err := r.ReadUnary()
	if err != nil {
		return 0, err
	}
	rem, err := r.ReadBits(l)
	if err != nil {
		return 0, err
	}
	return (uint64(1)<<uint(l) + rem) - 1, nil
}

// DeltaLen returns the number of bits WriteDelta(v) writes.
func DeltaLen(v uint64) int {
	l := bits.Len64(v + 1)
	return GammaLen(uint64(l-1)) + (l - 1)
}

// WriteDelta writes v using Elias delta coding: the bit length of v+1
// gamma-coded, followed by the low bits of v+1 with the leading one
// stripped.
func WriteDelta(w *bitio.Writer, v uint64) (int, error) {
	if v > maxCodeable {
		return 0, bvgerrs.E(bvgerrs.KindCapacity, "codes.WriteDelta", "value too large")
	}
	l := bits.Len64(v + 1)
	n1, err := WriteGamma(w, uint64(l-1))
	if err != nil {
		return n1, err
	}
	rem := (v + 1) - (uint64(1) << uint(l-1))
	n2, err := w.WriteBits(l-1, rem)
	return n1 + n2, err
}

// ReadDelta reads a delta-coded value.
func ReadDelta(r *bitio.Reader) (uint64, error) {
	l1, err := ReadGamma(r)
	if err != nil {
		return 0, err
	}
	l := int(l1) + 1
	rem, err := r.ReadBits(l - 1)
	if err != nil {
		return 0, err
	}
	return (uint64(1)<<uint(l-1) + rem) - 1, nil
}

// MinimalBinaryLen returns the number of bits WriteMinimalBinary(v, n)
// writes, for v in [0, n).
func MinimalBinaryLen(v, n uint64) int {
	if n <= 1 {
		return 0
	}
	s := bits.Len64(n) - 1
	m := (uint64(1) << uint(s+1)) - n
	if v < m {
		return s
	}
	return s + 1
}

// WriteMinimalBinary writes v, 0 <= v < n, using Elias' minimal binary
// code: with s = floor(log2(n)) and m = 2^(s+1) - n, the m values below m
// use s bits and the remaining n - m values use s+1 bits, so no value
// costs more than ceil(log2(n)) bits.
func WriteMinimalBinary(w *bitio.Writer, v, n uint64) (int, error) {
	if n <= 1 {
		if v != 0 {
			return 0, bvgerrs.E(bvgerrs.KindInvariant, "codes.WriteMinimalBinary", "value out of range")
		}
		return 0, nil
	}
	if v >= n {
		return 0, bvgerrs.E(bvgerrs.KindInvariant, "codes.WriteMinimalBinary", "value out of range")
	}
	s := bits.Len64(n) - 1
	m := (uint64(1) << uint(s+1)) - n
	if v < m {
		return w.WriteBits(s, v)
	}
	return w.WriteBits(s+1, v+m)
}

// ReadMinimalBinary reads a value written by WriteMinimalBinary(_, _, n).
func ReadMinimalBinary(r *bitio.Reader, n uint64) (uint64, error) {
	if n <= 1 {
		return 0, nil
	}
	s := bits.Len64(n) - 1
	m := (uint64(1) << uint(s+1)) - n
	v, err := r.ReadBits(s)
	if err != nil {
		return 0, err
	}
	if v < m {
		return v, nil
	}
	bit, err := r.ReadBits(1)
	if err != nil {
		return 0, err
	}
	return (v<<1 | bit) - m, nil
}

// zetaBlock returns h (the number of full k-bit blocks below x = v+1) and
// the minimal-binary bound n = 2^((h+1)k) - 2^(hk) for the remainder.
func zetaBlock(v uint64, k int) (h int, n uint64, err error) {
	x := v + 1
	l := bits.Len64(x) - 1 // floor(log2(x))
	h = l / k
	t := h * k
	if t+k > 63 {
		return 0, 0, bvgerrs.E(bvgerrs.KindCapacity, "codes: zeta/pi parameter overflow", k)
	}
	n = ((uint64(1) << uint(k)) - 1) << uint(t)
	return h, n, nil
}

// ZetaLen returns the number of bits WriteZeta(v, k) writes.
func ZetaLen(v uint64, k int) int {
	h, n, err := zetaBlock(v, k)
	if err != nil {
		return 0
	}
	t := h * k
	r := (v + 1) - (uint64(1) << uint(t))
	return UnaryLen(uint64(h)) + MinimalBinaryLen(r, n)
}

// WriteZeta writes v using the Boldi-Vigna zeta_k code: the number of
// full k-bit blocks below v+1 in unary, followed by the remainder in
// minimal binary. Zeta_1 coincides bit-for-bit with gamma.
func WriteZeta(w *bitio.Writer, v uint64, k int) (int, error) {
	if v > maxCodeable {
		return 0, bvgerrs.E(bvgerrs.KindCapacity, "codes.WriteZeta", "value too large")
	}
	h, n, err := zetaBlock(v, k)
	if err != nil {
		return 0, err
	}
	t := h * k
	n1, err := w.WriteUnary(h)
	if err != nil {
		return n1, err
	}
	r := (v + 1) - (uint64(1) << uint(t))
	n2, err := WriteMinimalBinary(w, r, n)
	return n1 + n2, err
}

// ReadZeta reads a zeta_k-coded value.
func ReadZeta(r *bitio.Reader, k int) (uint64, error) {
	h, err := r.ReadUnary()
	if err != nil {
		return 0, err
	}
	t := h * k
	n := ((uint64(1) << uint(k)) - 1) << uint(t)
	rem, err := ReadMinimalBinary(r, n)
	if err != nil {
		return 0, err
	}
	return (uint64(1)<<uint(t) + rem) - 1, nil
}

// PiLen returns the number of bits WritePi(v, k) writes.
func PiLen(v uint64, k int) int {
	x := v + 1
	l := bits.Len64(x) - 1
	return ZetaLen(uint64(l), k) + l
}

// WritePi writes v using the pi_k code: the bit length of v+1 minus one,
// zeta_k-coded, followed by the low bits of v+1 with the leading one
// stripped, written raw (unlike delta, which gamma-codes the length and
// pi_k, which zeta_k-codes it, trading a larger constant for better
// behavior on heavier-tailed length distributions as k grows).
func WritePi(w *bitio.Writer, v uint64, k int) (int, error) {
	if v > maxCodeable {
		return 0, bvgerrs.E(bvgerrs.KindCapacity, "codes.WritePi", "value too large")
	}
	x := v + 1
	l := bits.Len64(x) - 1
	n1, err := WriteZeta(w, uint64(l), k)
	if err != nil {
		return n1, err
	}
	rem := x - (uint64(1) << uint(l))
	n2, err := w.WriteBits(l, rem)
	return n1 + n2, err
}

// ReadPi reads a pi_k-coded value.
func ReadPi(r *bitio.Reader, k int) (uint64, error) {
	l64, err := ReadZeta(r, k)
	if err != nil {
		return 0, err
	}
	l := int(l64)
	rem, err := r.ReadBits(l)
	if err != nil {
		return 0, err
	}
	return (uint64(1)<<uint(l) | rem) - 1, nil
}

// ToNat folds a signed offset into a natural number (0, -1, 1, -2, 2, ...
// maps to 0, 1, 2, 3, 4, ...), the mapping the BV format uses for the
// first interval start and first residual of a record, both coded
// relative to the current node and therefore possibly negative. Mirrors
// dsi_bitstream's ToNat trait.
func ToNat(x int64) uint64 {
	if x >= 0 {
		return uint64(x) << 1
	}
	return uint64(-x)<<1 - 1
}

// FromNat is the inverse of ToNat.
func FromNat(n uint64) int64 {
	if n&1 == 0 {
		return int64(n >> 1)
	}
	return -int64((n + 1) >> 1)
}
