package bvgraph

import (
	"io"

	"github.com/dsi-unimi/bvgraph-go/bitio"
	"github.com/dsi-unimi/bvgraph-go/codes"
	"github.com/dsi-unimi/bvgraph-go/eliasfano"
)

// offsetsWriter writes the γ-coded offsets bitstream: a leading γ-zero
// sentinel (so the first cumulative offset is 0) followed by one γ-coded
// bit-length per node, mirrored exactly from impls.rs's OffsetsWriter.
type offsetsWriter struct {
	w *bitio.Writer
}

func newOffsetsWriter(out io.Writer) (*offsetsWriter, error) {
	w := bitio.NewWriter(out, bitio.BigEndian)
	if _, err := codes.WriteGamma(w, 0); err != nil {
		return nil, err
	}
	return &offsetsWriter{w: w}, nil
}

func (o *offsetsWriter) push(delta uint64) (int, error) {
	return codes.WriteGamma(o.w, delta)
}

func (o *offsetsWriter) flush() error {
	return o.w.Flush()
}

// DecodeOffsets γ-decodes an offsets bitstream of numNodes+1 deltas (the
// leading sentinel plus one record bit length per node) into an
// Elias-Fano index over their monotone running sums, giving O(1) random access
// to any node's absolute bit offset. Mirrors spec §4.3's "streaming
// γ-decoding of the offsets bit stream, yielding exactly N + 1 monotone
// values".
func DecodeOffsets(data []byte, numNodes int) (*eliasfano.Index, error) {
	r := bitio.NewReader(data, bitio.BigEndian)
	cumulative := make([]uint64, numNodes+1)
	var sum uint64
	for i := 0; i <= numNodes; i++ {
		delta, err := codes.ReadGamma(r)
		if err != nil {
			return nil, err
		}
		sum += delta
		cumulative[i] = sum
	}
	return eliasfano.Build(cumulative)
}
