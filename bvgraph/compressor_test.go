package bvgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// These four cases are ported directly from bvcomp.rs's test_compressor*
// fixtures: same inputs, same expected intermediate fields.

func TestCompressorNoRef(t *testing.T) {
	c := &compressor{}
	c.compress([]uint64{0, 1, 2, 5, 7, 8, 9}, nil, 2)

	assert.Equal(t, 7, c.outdegree)
	assert.Empty(t, c.blocks)
	assert.Equal(t, []uint64{0, 1, 2, 5, 7, 8, 9}, c.extraNodes)
	assert.Equal(t, []uint64{0, 7}, c.leftInterval)
	assert.Equal(t, []uint64{3, 3}, c.lenInterval)
	assert.Equal(t, []uint64{5}, c.residuals)
}

func TestCompressor1(t *testing.T) {
	c := &compressor{}
	c.compress([]uint64{0, 1, 2, 5, 7, 8, 9}, []uint64{0, 1, 2}, 2)

	assert.Equal(t, 7, c.outdegree)
	assert.Empty(t, c.blocks)
	assert.Equal(t, []uint64{5, 7, 8, 9}, c.extraNodes)
	assert.Equal(t, []uint64{7}, c.leftInterval)
	assert.Equal(t, []uint64{3}, c.lenInterval)
	assert.Equal(t, []uint64{5}, c.residuals)
}

func TestCompressor2(t *testing.T) {
	c := &compressor{}
	c.compress([]uint64{0, 1, 2, 5, 7, 8, 9}, []uint64{0, 1, 2, 100}, 2)

	assert.Equal(t, 7, c.outdegree)
	assert.Equal(t, []uint64{4}, c.blocks)
	assert.Equal(t, []uint64{5, 7, 8, 9}, c.extraNodes)
	assert.Equal(t, []uint64{7}, c.leftInterval)
	assert.Equal(t, []uint64{3}, c.lenInterval)
	assert.Equal(t, []uint64{5}, c.residuals)
}

func TestCompressor3(t *testing.T) {
	c := &compressor{}
	c.compress([]uint64{0, 1, 2, 5, 7, 8, 9, 100}, []uint64{0, 1, 2, 4, 7, 8, 9, 101}, 2)

	assert.Equal(t, 8, c.outdegree)
	assert.Equal(t, []uint64{4, 1, 3}, c.blocks)
	assert.Equal(t, []uint64{5, 100}, c.extraNodes)
	assert.Empty(t, c.leftInterval)
	assert.Empty(t, c.lenInterval)
	assert.Equal(t, []uint64{5, 100}, c.residuals)
}

func TestCompressorClearResetsAllFields(t *testing.T) {
	c := &compressor{}
	c.compress([]uint64{0, 1, 2, 5, 7, 8, 9, 100}, []uint64{0, 1, 2, 4, 7, 8, 9, 101}, 2)
	c.clear()

	assert.Equal(t, 0, c.outdegree)
	assert.Empty(t, c.blocks)
	assert.Empty(t, c.extraNodes)
	assert.Empty(t, c.leftInterval)
	assert.Empty(t, c.lenInterval)
	assert.Empty(t, c.residuals)
}

func TestCompressorNoIntervalsFallsThroughToResiduals(t *testing.T) {
	c := &compressor{}
	c.compress([]uint64{0, 1, 2, 5, 7, 8, 9}, nil, NoIntervals)

	assert.Empty(t, c.leftInterval)
	assert.Empty(t, c.lenInterval)
	assert.Equal(t, []uint64{0, 1, 2, 5, 7, 8, 9}, c.residuals)
}
