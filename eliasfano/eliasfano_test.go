package eliasfano

import (
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/require"
)

func monotoneSequence() []uint64 {
	return []uint64{0, 0, 3, 3, 7, 20, 21, 21, 100, 1000, 1000, 1 << 30}
}

func TestBuildAndGet(t *testing.T) {
	values := monotoneSequence()
	idx, err := Build(values)
	require.NoError(t, err)
	require.Equal(t, len(values), idx.Len())
	require.Equal(t, values[len(values)-1], idx.Max())
	for i, v := range values {
		got, err := idx.Get(i)
		require.NoError(t, err)
		require.Equalf(t, v, got, "index %d", i)
	}
}

func TestGetOutOfRange(t *testing.T) {
	idx, err := Build(monotoneSequence())
	require.NoError(t, err)
	_, err = idx.Get(-1)
	require.Error(t, err)
	_, err = idx.Get(idx.Len())
	require.Error(t, err)
}

func TestSuccessor(t *testing.T) {
	values := monotoneSequence()
	idx, err := Build(values)
	require.NoError(t, err)

	cases := []struct {
		x       uint64
		wantIdx int
		wantVal uint64
		wantOK  bool
	}{
		{0, 0, 0, true},
		{1, 2, 3, true},
		{3, 2, 3, true},
		{4, 4, 7, true},
		{21, 6, 21, true},
		{22, 8, 100, true},
		{1 << 30, 11, 1 << 30, true},
		{1<<30 + 1, 0, 0, false},
	}
	for _, tc := range cases {
		i, v, ok := idx.Successor(tc.x)
		require.Equalf(t, tc.wantOK, ok, "x=%d", tc.x)
		if ok {
			require.Equalf(t, tc.wantIdx, i, "x=%d", tc.x)
			require.Equalf(t, tc.wantVal, v, "x=%d", tc.x)
		}
	}
}

func TestEmptySequence(t *testing.T) {
	idx, err := Build(nil)
	require.NoError(t, err)
	require.Equal(t, 0, idx.Len())
	_, _, ok := idx.Successor(0)
	require.False(t, ok)
}

func TestBuilderRejectsNonMonotone(t *testing.T) {
	b := NewBuilder(2, 10)
	require.NoError(t, b.Push(5))
	require.Error(t, b.Push(3))
}

func TestBuilderRejectsWrongCount(t *testing.T) {
	b := NewBuilder(3, 10)
	require.NoError(t, b.Push(1))
	_, err := b.Build()
	require.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	values := monotoneSequence()
	idx, err := Build(values)
	require.NoError(t, err)

	path := filepath.Join(tempDir, "offsets.ef")
	require.NoError(t, idx.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, idx.Len(), loaded.Len())
	require.Equal(t, idx.Max(), loaded.Max())
	for i, v := range values {
		got, err := loaded.Get(i)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestLoadMmapRoundTrip(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	values := monotoneSequence()
	idx, err := Build(values)
	require.NoError(t, err)

	path := filepath.Join(tempDir, "offsets.ef")
	require.NoError(t, idx.Save(path))

	loaded, closer, err := LoadMmap(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, closer()) }()

	for i, v := range values {
		got, err := loaded.Get(i)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestLargeSequenceGetAndSuccessor(t *testing.T) {
	n := 5000
	values := make([]uint64, n)
	var acc uint64
	for i := range values {
		acc += uint64(i%7) + 1
		values[i] = acc
	}
	idx, err := Build(values)
	require.NoError(t, err)
	for i := 0; i < n; i += 37 {
		got, err := idx.Get(i)
		require.NoError(t, err)
		require.Equal(t, values[i], got)
	}
	si, sv, ok := idx.Successor(values[n/2])
	require.True(t, ok)
	require.LessOrEqual(t, si, n/2)
	require.GreaterOrEqual(t, sv, values[n/2])
}
