// Package bvgraph implements the Boldi-Vigna compressed web-graph format:
// a sequential and random-access decoder, a greedy reference-window
// encoder and a chunked alternative that keeps references inside
// fixed-size chunks of nodes, parallel
// compression, and the .properties sidecar file that records the codes
// and parameters a compressed graph was written with.
//
// The encoder/decoder pair is a renamed, Go-idiomatic port of
// original_source/webgraph/src/graphs/bvgraph/comp/bvcomp.rs's Compressor
// (push/diffComp/intervalize/write) and the record-decoding algorithm
// documented in that package's module-level docs and mirrored in load.rs.
package bvgraph

import "github.com/dsi-unimi/bvgraph-go/codes"

// Options controls both compression and decoding: the codes and
// parameters recorded here are exactly what a .properties file captures,
// so a graph can always be reopened with the Options read back from its
// sidecar file.
type Options struct {
	// WindowSize (W) bounds how far back a node's successor list may
	// reference an earlier one. 0 disables referencing entirely.
	WindowSize int
	// MaxRefCount (R_max) bounds the length of a chained reference: a
	// node may reference another only if that node's own chain depth is
	// below this count.
	MaxRefCount int
	// MinIntervalLength (L_min) is the minimum run length that gets
	// coded as an interval instead of falling through to residuals. 0
	// (NoIntervals) disables intervalization.
	MinIntervalLength int

	OutdegreeCode codes.Code
	ReferenceCode codes.Code
	BlockCode     codes.Code
	IntervalCode  codes.Code
	ResidualCode  codes.Code
	// ZetaK is the k parameter used wherever ResidualCode or
	// IntervalCode is codes.Zeta or codes.Pi.
	ZetaK int
}

// NoIntervals disables intervalization when passed as MinIntervalLength.
const NoIntervals = 0

// DefaultOptions mirrors the Java/Rust reference implementations' default
// static dispatch: γ for outdegrees/blocks/intervals, unary for
// references, ζ_3 for residuals.
func DefaultOptions() Options {
	return Options{
		WindowSize:        7,
		MaxRefCount:       3,
		MinIntervalLength: 4,
		OutdegreeCode:     codes.Gamma,
		ReferenceCode:     codes.Unary,
		BlockCode:         codes.Gamma,
		IntervalCode:      codes.Gamma,
		ResidualCode:      codes.Zeta,
		ZetaK:             3,
	}
}
