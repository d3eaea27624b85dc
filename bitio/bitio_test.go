package bitio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteReadBitsRoundTrip(t *testing.T) {
	for _, endian := range []Endianness{BigEndian, LittleEndian} {
		var buf bytes.Buffer
		w := NewWriter(&buf, endian)
		values := []struct {
			n int
			v uint64
		}{
			{1, 1}, {3, 5}, {7, 100}, {32, 0xdeadbeef}, {64, 0x0123456789abcdef},
			{5, 0}, {9, 511},
		}
		for _, tc := range values {
			n, err := w.WriteBits(tc.n, tc.v)
			require.NoError(t, err)
			require.Equal(t, tc.n, n)
		}
		require.NoError(t, w.Flush())

		r := NewReader(buf.Bytes(), endian)
		for _, tc := range values {
			got, err := r.ReadBits(tc.n)
			require.NoError(t, err)
			want := tc.v
			if tc.n < 64 {
				want &= (uint64(1) << uint(tc.n)) - 1
			}
			require.Equalf(t, want, got, "endian=%v n=%d", endian, tc.n)
		}
	}
}

func TestReadUnary(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, BigEndian)
	for _, v := range []int{0, 1, 5, 7, 40, 0, 100} {
		_, err := w.WriteUnary(v)
		require.NoError(t, err)
	}
	require.NoError(t, w.Flush())

	r := NewReader(buf.Bytes(), BigEndian)
	for _, want := range []int{0, 1, 5, 7, 40, 0, 100} {
		got, err := r.ReadUnary()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestPeekBitsDoesNotAdvance(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, BigEndian)
	_, err := w.WriteBits(16, 0xabcd)
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	r := NewReader(buf.Bytes(), BigEndian)
	peeked, err := r.PeekBits(8)
	require.NoError(t, err)
	require.Equal(t, uint64(0xab), peeked)
	require.Equal(t, int64(0), r.BitPos())

	got, err := r.ReadBits(16)
	require.NoError(t, err)
	require.Equal(t, uint64(0xabcd), got)
}

func TestSeekAndSkip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, LittleEndian)
	_, err := w.WriteBits(8, 0xaa)
	require.NoError(t, err)
	_, err = w.WriteBits(8, 0xbb)
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	r := NewReader(buf.Bytes(), LittleEndian)
	r.SkipBits(8)
	got, err := r.ReadBits(8)
	require.NoError(t, err)
	require.Equal(t, uint64(0xbb), got)

	r.SetBitPos(0)
	got, err = r.ReadBits(8)
	require.NoError(t, err)
	require.Equal(t, uint64(0xaa), got)
}

func TestCopyFromPreservesAlignment(t *testing.T) {
	var src bytes.Buffer
	sw := NewWriter(&src, BigEndian)
	_, err := sw.WriteBits(3, 0b101)
	require.NoError(t, err)
	_, err = sw.WriteBits(20, 0xabcde)
	require.NoError(t, err)
	require.NoError(t, sw.Flush())

	sr := NewReader(src.Bytes(), BigEndian)
	sr.SkipBits(3) // misalign the source relative to byte boundaries

	var dst bytes.Buffer
	dw := NewWriter(&dst, BigEndian)
	_, err = dw.WriteBits(2, 0b11) // misalign the destination too
	require.NoError(t, err)
	n, err := dw.CopyFrom(sr, 20)
	require.NoError(t, err)
	require.Equal(t, int64(20), n)
	require.NoError(t, dw.Flush())

	dr := NewReader(dst.Bytes(), BigEndian)
	prefix, err := dr.ReadBits(2)
	require.NoError(t, err)
	require.Equal(t, uint64(0b11), prefix)
	got, err := dr.ReadBits(20)
	require.NoError(t, err)
	require.Equal(t, uint64(0xabcde), got)
}

func TestEndiannessParsing(t *testing.T) {
	e, err := ParseEndianness("big")
	require.NoError(t, err)
	require.Equal(t, BigEndian, e)

	e, err = ParseEndianness("little")
	require.NoError(t, err)
	require.Equal(t, LittleEndian, e)

	_, err = ParseEndianness("middle")
	require.Error(t, err)
}
