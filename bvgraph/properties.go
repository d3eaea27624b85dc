package bvgraph

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dsi-unimi/bvgraph-go/bitio"
	"github.com/dsi-unimi/bvgraph-go/bvgerrs"
	"github.com/dsi-unimi/bvgraph-go/codes"
)

// Properties is the .properties sidecar file: the authoritative source of
// compression flags for later decoding, recorded once at the end of an
// encoder run.
type Properties struct {
	Options    Options
	Endianness bitio.Endianness
	NumNodes   uint64
	NumArcs    uint64
	// GraphBits and OffsetsBits are the exact bit lengths of the graph
	// and offsets bitstreams, needed to size a final Flush's trailing
	// padding away when reopening the file.
	GraphBits   int64
	OffsetsBits int64
	// BitsForOutdegrees is the summed bit length of every node's
	// outdegree field alone, CompStats.OutdegreeBits round-tripped for
	// the diagnostic bitsforoutdegrees key spec §6 requires.
	BitsForOutdegrees int64
	// Digest is CompStats.Digest, round-tripped so a reader can confirm
	// the .graph file it opened is the one this .properties file
	// describes.
	Digest uint64
}

// PropertiesFor builds a Properties ready to write alongside a .graph/
// .offsets pair produced with opts, from the stats a compression run
// returned.
func PropertiesFor(stats CompStats, opts Options, endian bitio.Endianness) Properties {
	return Properties{
		Options:           opts,
		Endianness:        endian,
		NumNodes:          stats.NumNodes,
		NumArcs:           stats.NumArcs,
		GraphBits:         stats.WrittenBits,
		OffsetsBits:       stats.OffsetsWrittenBits,
		BitsForOutdegrees: stats.OutdegreeBits,
		Digest:            stats.Digest,
	}
}

// compressionFlags renders the §6 compressionflags value: the code choice
// for each of the five per-field codings, pipe-separated in the order the
// record format itself writes them (outdegree, reference, block, interval,
// residual).
func compressionFlags(opts Options) string {
	return strings.Join([]string{
		"OUTDEGREES_" + opts.OutdegreeCode.String(),
		"REFERENCES_" + opts.ReferenceCode.String(),
		"BLOCKS_" + opts.BlockCode.String(),
		"INTERVALS_" + opts.IntervalCode.String(),
		"RESIDUALS_" + opts.ResidualCode.String(),
	}, "|")
}

// parseCompressionFlags recovers the five per-field codes from a
// compressionflags value written by compressionFlags.
func parseCompressionFlags(s string) (outdegree, reference, block, interval, residual codes.Code, err error) {
	parts := strings.Split(s, "|")
	if len(parts) != 5 {
		return 0, 0, 0, 0, 0, bvgerrs.E(bvgerrs.KindFormat, "bvgraph.ReadProperties", "malformed compressionflags", s)
	}
	prefixes := []string{"OUTDEGREES_", "REFERENCES_", "BLOCKS_", "INTERVALS_", "RESIDUALS_"}
	out := make([]codes.Code, 5)
	for i, part := range parts {
		if !strings.HasPrefix(part, prefixes[i]) {
			return 0, 0, 0, 0, 0, bvgerrs.E(bvgerrs.KindFormat, "bvgraph.ReadProperties", "malformed compressionflags field", part)
		}
		c, perr := codes.ParseCode(strings.TrimPrefix(part, prefixes[i]))
		if perr != nil {
			return 0, 0, 0, 0, 0, perr
		}
		out[i] = c
	}
	return out[0], out[1], out[2], out[3], out[4], nil
}

// This package implements only the plain-ASCII subset of the Java
// Properties escaping rules that this module's own keys and values ever
// need (no unicode escapes): a leading '#'/'!' line is a comment, and '=',
// ':', and '\' are backslash-escaped in both keys and values. There is no
// third-party Java-properties library in the examples this module draws
// its dependency stack from, so this stdlib-only implementation is the
// one ambient-concern exception: the format itself is tiny and
// self-contained enough that pulling in a dependency for it would not
// exercise any library the rest of the stack doesn't already cover.
func escapeProp(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '=', ':', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func unescapeProp(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			default:
				b.WriteByte(s[i])
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// WriteProperties serializes p in Java Properties format.
func WriteProperties(w io.Writer, p Properties) error {
	entries := [][2]string{
		{"nodes", strconv.FormatUint(p.NumNodes, 10)},
		{"arcs", strconv.FormatUint(p.NumArcs, 10)},
		{"graphbits", strconv.FormatInt(p.GraphBits, 10)},
		{"offsetsbits", strconv.FormatInt(p.OffsetsBits, 10)},
		{"bitsforoutdegrees", strconv.FormatInt(p.BitsForOutdegrees, 10)},
		{"digest", strconv.FormatUint(p.Digest, 16)},
		{"endianness", p.Endianness.String()},
		{"windowsize", strconv.Itoa(p.Options.WindowSize)},
		{"maxrefcount", strconv.Itoa(p.Options.MaxRefCount)},
		{"minintervallength", strconv.Itoa(p.Options.MinIntervalLength)},
		{"zetak", strconv.Itoa(p.Options.ZetaK)},
		{"compressionflags", compressionFlags(p.Options)},
		{"outdegreecoding", p.Options.OutdegreeCode.String()},
		{"referencecoding", p.Options.ReferenceCode.String()},
		{"blockcoding", p.Options.BlockCode.String()},
		{"intervalcoding", p.Options.IntervalCode.String()},
		{"residualcoding", p.Options.ResidualCode.String()},
	}
	bw := bufio.NewWriter(w)
	for _, kv := range entries {
		if _, err := fmt.Fprintf(bw, "%s=%s\n", escapeProp(kv[0]), escapeProp(kv[1])); err != nil {
			return bvgerrs.E(bvgerrs.KindIO, "bvgraph.WriteProperties", err)
		}
	}
	return bw.Flush()
}

// ReadProperties parses a .properties sidecar file written by
// WriteProperties.
func ReadProperties(r io.Reader) (Properties, error) {
	var p Properties
	fields := map[string]string{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		i := unescapedIndex(line, '=')
		if i < 0 {
			return p, bvgerrs.E(bvgerrs.KindFormat, "bvgraph.ReadProperties", "malformed line", line)
		}
		key := unescapeProp(line[:i])
		val := unescapeProp(line[i+1:])
		fields[key] = val
	}
	if err := sc.Err(); err != nil {
		return p, bvgerrs.E(bvgerrs.KindIO, "bvgraph.ReadProperties", err)
	}

	var err error
	if p.NumNodes, err = parseUint(fields, "nodes"); err != nil {
		return p, err
	}
	if p.NumArcs, err = parseUint(fields, "arcs"); err != nil {
		return p, err
	}
	if v, err := parseInt(fields, "graphbits"); err != nil {
		return p, err
	} else {
		p.GraphBits = int64(v)
	}
	if v, err := parseInt(fields, "offsetsbits"); err != nil {
		return p, err
	} else {
		p.OffsetsBits = int64(v)
	}
	if v, err := parseInt(fields, "bitsforoutdegrees"); err != nil {
		return p, err
	} else {
		p.BitsForOutdegrees = int64(v)
	}
	if p.Endianness, err = bitio.ParseEndianness(fields["endianness"]); err != nil {
		return p, err
	}
	if digest, ok := fields["digest"]; ok {
		d, derr := strconv.ParseUint(digest, 16, 64)
		if derr != nil {
			return p, bvgerrs.E(bvgerrs.KindFormat, "bvgraph.ReadProperties", "invalid field digest", derr)
		}
		p.Digest = d
	}
	if p.Options.WindowSize, err = parseInt(fields, "windowsize"); err != nil {
		return p, err
	}
	if p.Options.MaxRefCount, err = parseInt(fields, "maxrefcount"); err != nil {
		return p, err
	}
	if p.Options.MinIntervalLength, err = parseInt(fields, "minintervallength"); err != nil {
		return p, err
	}
	if p.Options.ZetaK, err = parseInt(fields, "zetak"); err != nil {
		return p, err
	}
	if p.Options.OutdegreeCode, err = codes.ParseCode(fields["outdegreecoding"]); err != nil {
		return p, err
	}
	if p.Options.ReferenceCode, err = codes.ParseCode(fields["referencecoding"]); err != nil {
		return p, err
	}
	if p.Options.BlockCode, err = codes.ParseCode(fields["blockcoding"]); err != nil {
		return p, err
	}
	if p.Options.IntervalCode, err = codes.ParseCode(fields["intervalcoding"]); err != nil {
		return p, err
	}
	if p.Options.ResidualCode, err = codes.ParseCode(fields["residualcoding"]); err != nil {
		return p, err
	}
	if flags, ok := fields["compressionflags"]; ok {
		outdegree, reference, block, interval, residual, ferr := parseCompressionFlags(flags)
		if ferr != nil {
			return p, ferr
		}
		if outdegree != p.Options.OutdegreeCode || reference != p.Options.ReferenceCode ||
			block != p.Options.BlockCode || interval != p.Options.IntervalCode ||
			residual != p.Options.ResidualCode {
			return p, bvgerrs.E(bvgerrs.KindIntegrity, "bvgraph.ReadProperties", "compressionflags disagrees with per-field coding keys", flags)
		}
	}
	return p, nil
}

func parseUint(fields map[string]string, key string) (uint64, error) {
	v, ok := fields[key]
	if !ok {
		return 0, bvgerrs.E(bvgerrs.KindFormat, "bvgraph.ReadProperties", "missing field", key)
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, bvgerrs.E(bvgerrs.KindFormat, "bvgraph.ReadProperties", "invalid field "+key, err)
	}
	return n, nil
}

func parseInt(fields map[string]string, key string) (int, error) {
	v, ok := fields[key]
	if !ok {
		return 0, bvgerrs.E(bvgerrs.KindFormat, "bvgraph.ReadProperties", "missing field", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, bvgerrs.E(bvgerrs.KindFormat, "bvgraph.ReadProperties", "invalid field "+key, err)
	}
	return n, nil
}

func unescapedIndex(s string, target byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == target {
			return i
		}
	}
	return -1
}
