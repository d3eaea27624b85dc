package bvgraph

import (
	"github.com/dsi-unimi/bvgraph-go/bitio"
	"github.com/dsi-unimi/bvgraph-go/codes"
)

// recordWriter is the mock/real writer duality bvcomp.rs calls
// EncodeAndEstimate: the encoder picks the cheapest candidate reference by
// running compressor.write against an estimator (same field dispatch,
// Write replaced by Len) before committing the chosen candidate to the
// real bitstream with the exact same call sequence, so the two never
// drift apart.
type recordWriter interface {
	writeOutdegree(d uint64) (int, error)
	writeReferenceOffset(delta uint64) (int, error)
	writeBlockCount(n uint64) (int, error)
	writeBlock(b uint64) (int, error)
	writeIntervalCount(n uint64) (int, error)
	writeIntervalStart(v uint64) (int, error)
	writeIntervalLen(v uint64) (int, error)
	writeFirstResidual(v uint64) (int, error)
	writeResidual(v uint64) (int, error)
}

// realWriter writes a record's fields to a bitio.Writer using the codes
// configured in opts.
type realWriter struct {
	w    *bitio.Writer
	opts Options
	// lastOutdegreeBits is the bit length of the most recently written
	// outdegree field, a side channel finishNode reads to accumulate
	// CompStats.OutdegreeBits without threading a second return value
	// through every write/estimate call site.
	lastOutdegreeBits int
}

func (r *realWriter) writeOutdegree(d uint64) (int, error) {
	n, err := codes.WriteOf(r.opts.OutdegreeCode, r.w, d, 0)
	r.lastOutdegreeBits = n
	return n, err
}
func (r *realWriter) writeReferenceOffset(delta uint64) (int, error) {
	return codes.WriteOf(r.opts.ReferenceCode, r.w, delta, 0)
}
func (r *realWriter) writeBlockCount(n uint64) (int, error) {
	return codes.WriteOf(r.opts.BlockCode, r.w, n, 0)
}
func (r *realWriter) writeBlock(b uint64) (int, error) {
	return codes.WriteOf(r.opts.BlockCode, r.w, b, 0)
}
func (r *realWriter) writeIntervalCount(n uint64) (int, error) {
	return codes.WriteOf(r.opts.IntervalCode, r.w, n, uint64(r.opts.ZetaK))
}
func (r *realWriter) writeIntervalStart(v uint64) (int, error) {
	return codes.WriteOf(r.opts.IntervalCode, r.w, v, uint64(r.opts.ZetaK))
}
func (r *realWriter) writeIntervalLen(v uint64) (int, error) {
	return codes.WriteOf(r.opts.IntervalCode, r.w, v, uint64(r.opts.ZetaK))
}
func (r *realWriter) writeFirstResidual(v uint64) (int, error) {
	return codes.WriteOf(r.opts.ResidualCode, r.w, v, uint64(r.opts.ZetaK))
}
func (r *realWriter) writeResidual(v uint64) (int, error) {
	return codes.WriteOf(r.opts.ResidualCode, r.w, v, uint64(r.opts.ZetaK))
}

// estimator computes the bit length a realWriter would produce, without
// writing anything.
type estimator struct {
	opts Options
}

func (e *estimator) writeOutdegree(d uint64) (int, error) {
	return codes.LenOf(e.opts.OutdegreeCode, d, 0), nil
}
func (e *estimator) writeReferenceOffset(delta uint64) (int, error) {
	return codes.LenOf(e.opts.ReferenceCode, delta, 0), nil
}
func (e *estimator) writeBlockCount(n uint64) (int, error) {
	return codes.LenOf(e.opts.BlockCode, n, 0), nil
}
func (e *estimator) writeBlock(b uint64) (int, error) {
	return codes.LenOf(e.opts.BlockCode, b, 0), nil
}
func (e *estimator) writeIntervalCount(n uint64) (int, error) {
	return codes.LenOf(e.opts.IntervalCode, n, uint64(e.opts.ZetaK)), nil
}
func (e *estimator) writeIntervalStart(v uint64) (int, error) {
	return codes.LenOf(e.opts.IntervalCode, v, uint64(e.opts.ZetaK)), nil
}
func (e *estimator) writeIntervalLen(v uint64) (int, error) {
	return codes.LenOf(e.opts.IntervalCode, v, uint64(e.opts.ZetaK)), nil
}
func (e *estimator) writeFirstResidual(v uint64) (int, error) {
	return codes.LenOf(e.opts.ResidualCode, v, uint64(e.opts.ZetaK)), nil
}
func (e *estimator) writeResidual(v uint64) (int, error) {
	return codes.LenOf(e.opts.ResidualCode, v, uint64(e.opts.ZetaK)), nil
}
