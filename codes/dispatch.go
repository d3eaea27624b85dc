package codes

import "github.com/dsi-unimi/bvgraph-go/bitio"

// LenFunc, WriteFunc and ReadFunc are the dispatch-table function shapes
// shared by every code. arg carries k for Zeta/Pi and n for
// MinimalBinary; it is ignored by Unary, Gamma and Delta, the same
// pattern as the FieldType-indexed function arrays in
// encoding/pam/fieldio's writer/reader, generalized from a byte-type tag
// to a Code tag.
type LenFunc func(v, arg uint64) int
type WriteFunc func(w *bitio.Writer, v, arg uint64) (int, error)
type ReadFunc func(r *bitio.Reader, arg uint64) (uint64, error)

var lenTable = [...]LenFunc{
	Unary:         func(v, _ uint64) int { return UnaryLen(v) },
	Gamma:         func(v, _ uint64) int { return GammaLen(v) },
	Delta:         func(v, _ uint64) int { return DeltaLen(v) },
	Zeta:          func(v, arg uint64) int { return ZetaLen(v, int(arg)) },
	Pi:            func(v, arg uint64) int { return PiLen(v, int(arg)) },
	MinimalBinary: func(v, arg uint64) int { return MinimalBinaryLen(v, arg) },
}

var writeTable = [...]WriteFunc{
	Unary:         func(w *bitio.Writer, v, _ uint64) (int, error) { return WriteUnary(w, v) },
	Gamma:         func(w *bitio.Writer, v, _ uint64) (int, error) { return WriteGamma(w, v) },
	Delta:         func(w *bitio.Writer, v, _ uint64) (int, error) { return WriteDelta(w, v) },
	Zeta:          func(w *bitio.Writer, v, arg uint64) (int, error) { return WriteZeta(w, v, int(arg)) },
	Pi:            func(w *bitio.Writer, v, arg uint64) (int, error) { return WritePi(w, v, int(arg)) },
	MinimalBinary: func(w *bitio.Writer, v, arg uint64) (int, error) { return WriteMinimalBinary(w, v, arg) },
}

var readTable = [...]ReadFunc{
	Unary:         func(r *bitio.Reader, _ uint64) (uint64, error) { return ReadUnary(r) },
	Gamma:         func(r *bitio.Reader, _ uint64) (uint64, error) { return ReadGamma(r) },
	Delta:         func(r *bitio.Reader, _ uint64) (uint64, error) { return ReadDelta(r) },
	Zeta:          func(r *bitio.Reader, arg uint64) (uint64, error) { return ReadZeta(r, int(arg)) },
	Pi:            func(r *bitio.Reader, arg uint64) (uint64, error) { return ReadPi(r, int(arg)) },
	MinimalBinary: func(r *bitio.Reader, arg uint64) (uint64, error) { return ReadMinimalBinary(r, arg) },
}

// LenOf, WriteOf and ReadOf are the runtime dispatch entry points: the
// code to use is picked at load time (typically from a graph's
// .properties file) and looked up in a fixed table rather than branched
// on with a type switch.
func LenOf(c Code, v, arg uint64) int                              { return lenTable[c](v, arg) }
func WriteOf(c Code, w *bitio.Writer, v, arg uint64) (int, error)  { return writeTable[c](w, v, arg) }
func ReadOf(c Code, r *bitio.Reader, arg uint64) (uint64, error)   { return readTable[c](r, arg) }

// Coder is the compile-time dispatch strategy: a zero-sized type per
// code, selected by the caller at compile time (e.g. as a type parameter
// to a generic BV record reader) rather than through a table indirection.
// Its methods call the exact same functions the runtime tables do.
type Coder interface {
	Len(v, arg uint64) int
	Write(w *bitio.Writer, v, arg uint64) (int, error)
	Read(r *bitio.Reader, arg uint64) (uint64, error)
}

type unaryCoder struct{}

func (unaryCoder) Len(v, _ uint64) int                             { return UnaryLen(v) }
func (unaryCoder) Write(w *bitio.Writer, v, _ uint64) (int, error) { return WriteUnary(w, v) }
func (unaryCoder) Read(r *bitio.Reader, _ uint64) (uint64, error)  { return ReadUnary(r) }

type gammaCoder struct{}

func (gammaCoder) Len(v, _ uint64) int                             { return GammaLen(v) }
func (gammaCoder) Write(w *bitio.Writer, v, _ uint64) (int, error) { return WriteGamma(w, v) }
func (gammaCoder) Read(r *bitio.Reader, _ uint64) (uint64, error)  { return ReadGamma(r) }

type deltaCoder struct{}

func (deltaCoder) Len(v, _ uint64) int                             { return DeltaLen(v) }
func (deltaCoder) Write(w *bitio.Writer, v, _ uint64) (int, error) { return WriteDelta(w, v) }
func (deltaCoder) Read(r *bitio.Reader, _ uint64) (uint64, error)  { return ReadDelta(r) }

type zetaCoder struct{}

func (zetaCoder) Len(v, arg uint64) int { return ZetaLen(v, int(arg)) }
func (zetaCoder) Write(w *bitio.Writer, v, arg uint64) (int, error) {
	return WriteZeta(w, v, int(arg))
}
func (zetaCoder) Read(r *bitio.Reader, arg uint64) (uint64, error) { return ReadZeta(r, int(arg)) }

type piCoder struct{}

func (piCoder) Len(v, arg uint64) int                             { return PiLen(v, int(arg)) }
func (piCoder) Write(w *bitio.Writer, v, arg uint64) (int, error) { return WritePi(w, v, int(arg)) }
func (piCoder) Read(r *bitio.Reader, arg uint64) (uint64, error)  { return ReadPi(r, int(arg)) }

type minimalBinaryCoder struct{}

func (minimalBinaryCoder) Len(v, arg uint64) int { return MinimalBinaryLen(v, arg) }
func (minimalBinaryCoder) Write(w *bitio.Writer, v, arg uint64) (int, error) {
	return WriteMinimalBinary(w, v, arg)
}
func (minimalBinaryCoder) Read(r *bitio.Reader, arg uint64) (uint64, error) {
	return ReadMinimalBinary(r, arg)
}

// CoderFor returns the compile-time Coder implementation for c, for
// callers that want to pick a code once and reuse the interface value
// without dispatch-table indirection per call.
func CoderFor(c Code) Coder {
	switch c {
	case Unary:
		return unaryCoder{}
	case Gamma:
		return gammaCoder{}
	case Delta:
		return deltaCoder{}
	case Zeta:
		return zetaCoder{}
	case Pi:
		return piCoder{}
	case MinimalBinary:
		return minimalBinaryCoder{}
	default:
		return nil
	}
}
