package bvgraph

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsi-unimi/bvgraph-go/graph"
)

func TestCompressGraphToFilesRoundTrip(t *testing.T) {
	g := buildSampleGraph()
	opts := DefaultOptions()
	base := filepath.Join(t.TempDir(), "sample")

	stats, err := CompressGraphToFiles(context.Background(), g, base, opts)
	require.NoError(t, err)
	assert.Equal(t, g.NumNodes(), stats.NumNodes)

	decoded, props, err := OpenSequentialGraphFiles(base)
	require.NoError(t, err)
	assert.Equal(t, g.NumNodes(), props.NumNodes)
	assert.Equal(t, stats.Digest, props.Digest)
	assert.NoError(t, graph.EqSorted(g, decoded))
}
