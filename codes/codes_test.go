package codes

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dsi-unimi/bvgraph-go/bitio"
)

func roundTrip(t *testing.T, write func(*bitio.Writer) (int, error), read func(*bitio.Reader) (uint64, error), want uint64) {
	t.Helper()
	var buf bytes.Buffer
	w := bitio.NewWriter(&buf, bitio.BigEndian)
	n, err := write(w)
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	r := bitio.NewReader(buf.Bytes(), bitio.BigEndian)
	got, err := read(r)
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, int64(n), r.BitPos())
}

var testValues = []uint64{0, 1, 2, 3, 4, 7, 8, 15, 16, 100, 1000, 1 << 20, 1<<40 + 7}

func TestGammaRoundTripAndLen(t *testing.T) {
	for _, v := range testValues {
		v := v
		roundTrip(t,
			func(w *bitio.Writer) (int, error) { return WriteGamma(w, v) },
			func(r *bitio.Reader) (uint64, error) { return ReadGamma(r) },
			v)
		require.Equal(t, GammaLen(v), lenOnly(t, func(w *bitio.Writer) (int, error) { return WriteGamma(w, v) }))
	}
}

func TestDeltaRoundTripAndLen(t *testing.T) {
	for _, v := range testValues {
		v := v
		roundTrip(t,
			func(w *bitio.Writer) (int, error) { return WriteDelta(w, v) },
			func(r *bitio.Reader) (uint64, error) { return ReadDelta(r) },
			v)
		require.Equal(t, DeltaLen(v), lenOnly(t, func(w *bitio.Writer) (int, error) { return WriteDelta(w, v) }))
	}
}

func TestZetaRoundTripAndLen(t *testing.T) {
	for _, k := range []int{1, 2, 3, 4, 7} {
		for _, v := range testValues {
			v, k := v, k
			roundTrip(t,
				func(w *bitio.Writer) (int, error) { return WriteZeta(w, v, k) },
				func(r *bitio.Reader) (uint64, error) { return ReadZeta(r, k) },
				v)
			require.Equal(t, ZetaLen(v, k), lenOnly(t, func(w *bitio.Writer) (int, error) { return WriteZeta(w, v, k) }))
		}
	}
}

func TestZeta1MatchesGamma(t *testing.T) {
	for _, v := range testValues {
		require.Equal(t, GammaLen(v), ZetaLen(v, 1))

		var gbuf, zbuf bytes.Buffer
		gw := bitio.NewWriter(&gbuf, bitio.BigEndian)
		zw := bitio.NewWriter(&zbuf, bitio.BigEndian)
		_, err := WriteGamma(gw, v)
		require.NoError(t, err)
		_, err = WriteZeta(zw, v, 1)
		require.NoError(t, err)
		require.NoError(t, gw.Flush())
		require.NoError(t, zw.Flush())
		require.Equal(t, gbuf.Bytes(), zbuf.Bytes())
	}
}

func TestPiRoundTripAndLen(t *testing.T) {
	for _, k := range []int{1, 2, 3, 4} {
		for _, v := range testValues {
			v, k := v, k
			roundTrip(t,
				func(w *bitio.Writer) (int, error) { return WritePi(w, v, k) },
				func(r *bitio.Reader) (uint64, error) { return ReadPi(r, k) },
				v)
			require.Equal(t, PiLen(v, k), lenOnly(t, func(w *bitio.Writer) (int, error) { return WritePi(w, v, k) }))
		}
	}
}

func TestUnaryRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 2, 31, 32, 33, 63, 64, 65, 200} {
		v := v
		roundTrip(t,
			func(w *bitio.Writer) (int, error) { return WriteUnary(w, v) },
			func(r *bitio.Reader) (uint64, error) { return ReadUnary(r) },
			v)
		require.Equal(t, UnaryLen(v), lenOnly(t, func(w *bitio.Writer) (int, error) { return WriteUnary(w, v) }))
	}
}

func TestMinimalBinaryRoundTrip(t *testing.T) {
	for _, n := range []uint64{1, 2, 3, 5, 7, 8, 16, 100, 255, 256} {
		for v := uint64(0); v < n && v < 300; v++ {
			v, n := v, n
			roundTrip(t,
				func(w *bitio.Writer) (int, error) { return WriteMinimalBinary(w, v, n) },
				func(r *bitio.Reader) (uint64, error) { return ReadMinimalBinary(r, n) },
				v)
			require.Equal(t, MinimalBinaryLen(v, n), lenOnly(t, func(w *bitio.Writer) (int, error) { return WriteMinimalBinary(w, v, n) }))
		}
	}
}

func TestMinimalBinarySavesOverFixedLength(t *testing.T) {
	// n = 5 is not a power of two: 3 values fit in 2 bits, 2 need 3 bits,
	// never fixed-length ceil(log2(5)) = 3 bits for everyone.
	var total int
	for v := uint64(0); v < 5; v++ {
		total += MinimalBinaryLen(v, 5)
	}
	require.Equal(t, 12, total) // 3*2 + 2*3
}

func TestDispatchTableMatchesDirectCalls(t *testing.T) {
	cases := []struct {
		code Code
		v    uint64
		arg  uint64
	}{
		{Unary, 5, 0},
		{Gamma, 100, 0},
		{Delta, 100000, 0},
		{Zeta, 57, 3},
		{Pi, 57, 2},
		{MinimalBinary, 3, 7},
	}
	for _, tc := range cases {
		require.Equal(t, LenOf(tc.code, tc.v, tc.arg), directLen(tc.code, tc.v, tc.arg))

		var buf bytes.Buffer
		w := bitio.NewWriter(&buf, bitio.BigEndian)
		n, err := WriteOf(tc.code, w, tc.v, tc.arg)
		require.NoError(t, err)
		require.NoError(t, w.Flush())
		require.Equal(t, LenOf(tc.code, tc.v, tc.arg), n)

		r := bitio.NewReader(buf.Bytes(), bitio.BigEndian)
		got, err := ReadOf(tc.code, r, tc.arg)
		require.NoError(t, err)
		require.Equal(t, tc.v, got)
	}
}

func TestCoderForMatchesDispatchTable(t *testing.T) {
	for _, c := range []Code{Unary, Gamma, Delta, Zeta, Pi, MinimalBinary} {
		coder := CoderFor(c)
		require.NotNil(t, coder)
		v, arg := uint64(42), uint64(3)
		if c == MinimalBinary {
			arg = 50
		}
		require.Equal(t, LenOf(c, v, arg), coder.Len(v, arg))

		var buf bytes.Buffer
		w := bitio.NewWriter(&buf, bitio.BigEndian)
		n, err := coder.Write(w, v, arg)
		require.NoError(t, err)
		require.NoError(t, w.Flush())

		r := bitio.NewReader(buf.Bytes(), bitio.BigEndian)
		got, err := coder.Read(r, arg)
		require.NoError(t, err)
		require.Equal(t, v, got)
		require.Equal(t, LenOf(c, v, arg), n)
	}
}

func lenOnly(t *testing.T, write func(*bitio.Writer) (int, error)) int {
	t.Helper()
	var buf bytes.Buffer
	w := bitio.NewWriter(&buf, bitio.BigEndian)
	n, err := write(w)
	require.NoError(t, err)
	require.NoError(t, w.Flush())
	return n
}

func directLen(c Code, v, arg uint64) int {
	switch c {
	case Unary:
		return UnaryLen(v)
	case Gamma:
		return GammaLen(v)
	case Delta:
		return DeltaLen(v)
	case Zeta:
		return ZetaLen(v, int(arg))
	case Pi:
		return PiLen(v, int(arg))
	case MinimalBinary:
		return MinimalBinaryLen(v, arg)
	}
	return -1
}
