package pairsort

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/golang/snappy"
	"github.com/minio/highwayhash"

	"github.com/dsi-unimi/bvgraph-go/bitio"
	"github.com/dsi-unimi/bvgraph-go/bvgerrs"
	"github.com/dsi-unimi/bvgraph-go/codes"
)

// BatchCodec encodes a sorted slice of triples to bytes for spilling to
// disk and back, mirroring the pluggable block format of
// cmd/bio-bam-sort/sorter's sortShardWriter/sortShardReader (which fixes
// its own format instead; here the format itself is the plug point).
type BatchCodec interface {
	// Name identifies the codec in a spill file's header. Merging a spill
	// file whose recorded name differs from the merging codec's Name fails
	// with a format error; no other codec is looked up by name.
	Name() string
	EncodeBatch(triples []Triple) ([]byte, error)
	DecodeBatch(data []byte) ([]Triple, error)
}

// GapBitmapCodec is the default BatchCodec: triples are grouped by Src
// (the batch is already sorted), each group's Src delta and degree are
// gamma-coded, and each Dst within a group is gamma-coded as a gap from
// the previous Dst in the same group. This is the "per-batch bitmap of
// sources, gap-coded destinations" layout: the recovered Src deltas play
// the role of the bitmap (a zero delta never occurs since groups are by
// distinct Src, so the degree-prefixed group structure stands in for an
// explicit presence bitmap without spending a bit per possible source).
type GapBitmapCodec struct{}

func (GapBitmapCodec) Name() string { return "gap-bitmap" }

func (GapBitmapCodec) EncodeBatch(triples []Triple) ([]byte, error) {
	var buf bytes.Buffer
	w := bitio.NewWriter(&buf, bitio.BigEndian)

	hasLabels := false
	for _, t := range triples {
		if t.Label != nil {
			hasLabels = true
			break
		}
	}
	if _, err := codes.WriteGamma(w, uint64(len(triples))); err != nil {
		return nil, bvgerrs.E(bvgerrs.KindIO, "pairsort.GapBitmapCodec.EncodeBatch", err)
	}
	labelBit := uint64(0)
	if hasLabels {
		labelBit = 1
	}
	if _, err := w.WriteBits(1, labelBit); err != nil {
		return nil, bvgerrs.E(bvgerrs.KindIO, "pairsort.GapBitmapCodec.EncodeBatch", err)
	}

	var prevSrc uint64
	firstGroup := true
	for i := 0; i < len(triples); {
		src := triples[i].Src
		j := i
		for j < len(triples) && triples[j].Src == src {
			j++
		}
		srcGap := src
		if !firstGroup {
			srcGap = src - prevSrc
		}
		firstGroup = false
		prevSrc = src
		if _, err := codes.WriteGamma(w, srcGap); err != nil {
			return nil, bvgerrs.E(bvgerrs.KindIO, "pairsort.GapBitmapCodec.EncodeBatch", err)
		}
		if _, err := codes.WriteGamma(w, uint64(j-i)); err != nil {
			return nil, bvgerrs.E(bvgerrs.KindIO, "pairsort.GapBitmapCodec.EncodeBatch", err)
		}

		var prevDst uint64
		firstDst := true
		for k := i; k < j; k++ {
			dst := triples[k].Dst
			dstGap := dst
			if !firstDst {
				dstGap = dst - prevDst
			}
			firstDst = false
			prevDst = dst
			if _, err := codes.WriteGamma(w, dstGap); err != nil {
				return nil, bvgerrs.E(bvgerrs.KindIO, "pairsort.GapBitmapCodec.EncodeBatch", err)
			}
			if hasLabels {
				if err := writeLabel(w, triples[k].Label); err != nil {
					return nil, bvgerrs.E(bvgerrs.KindIO, "pairsort.GapBitmapCodec.EncodeBatch", err)
				}
			}
		}
		i = j
	}
	if err := w.Flush(); err != nil {
		return nil, bvgerrs.E(bvgerrs.KindIO, "pairsort.GapBitmapCodec.EncodeBatch", err)
	}
	return buf.Bytes(), nil
}

func (GapBitmapCodec) DecodeBatch(data []byte) ([]Triple, error) {
	r := bitio.NewReader(data, bitio.BigEndian)
	total, err := codes.ReadGamma(r)
	if err != nil {
		return nil, bvgerrs.E(bvgerrs.KindFormat, "pairsort.GapBitmapCodec.DecodeBatch", err)
	}
	labelBit, err := r.ReadBits(1)
	if err != nil {
		return nil, bvgerrs.E(bvgerrs.KindFormat, "pairsort.GapBitmapCodec.DecodeBatch", err)
	}
	hasLabels := labelBit != 0

	triples := make([]Triple, 0, total)
	var prevSrc uint64
	firstGroup := true
	for uint64(len(triples)) < total {
		srcGap, err := codes.ReadGamma(r)
		if err != nil {
			return nil, bvgerrs.E(bvgerrs.KindFormat, "pairsort.GapBitmapCodec.DecodeBatch", err)
		}
		src := srcGap
		if !firstGroup {
			src = prevSrc + srcGap
		}
		firstGroup = false
		prevSrc = src

		deg, err := codes.ReadGamma(r)
		if err != nil {
			return nil, bvgerrs.E(bvgerrs.KindFormat, "pairsort.GapBitmapCodec.DecodeBatch", err)
		}

		var prevDst uint64
		firstDst := true
		for k := uint64(0); k < deg; k++ {
			dstGap, err := codes.ReadGamma(r)
			if err != nil {
				return nil, bvgerrs.E(bvgerrs.KindFormat, "pairsort.GapBitmapCodec.DecodeBatch", err)
			}
			dst := dstGap
			if !firstDst {
				dst = prevDst + dstGap
			}
			firstDst = false
			prevDst = dst

			var label []byte
			if hasLabels {
				label, err = readLabel(r)
				if err != nil {
					return nil, bvgerrs.E(bvgerrs.KindFormat, "pairsort.GapBitmapCodec.DecodeBatch", err)
				}
			}
			triples = append(triples, Triple{Src: src, Dst: dst, Label: label})
		}
	}
	return triples, nil
}

func writeLabel(w *bitio.Writer, label []byte) error {
	if _, err := codes.WriteGamma(w, uint64(len(label))); err != nil {
		return err
	}
	for _, b := range label {
		if _, err := w.WriteBits(8, uint64(b)); err != nil {
			return err
		}
	}
	return nil
}

func readLabel(r *bitio.Reader) ([]byte, error) {
	n, err := codes.ReadGamma(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	label := make([]byte, n)
	for i := range label {
		v, err := r.ReadBits(8)
		if err != nil {
			return nil, err
		}
		label[i] = byte(v)
	}
	return label, nil
}

// SnappyCodec wraps another BatchCodec and snappy-compresses its
// encoded bytes before they hit disk, the same way sortShardWriter
// snappy-compresses each block when SortOptions.NoCompressTmpFiles is
// false (the teacher's default).
type SnappyCodec struct {
	Inner BatchCodec
}

func (c SnappyCodec) inner() BatchCodec {
	if c.Inner == nil {
		return GapBitmapCodec{}
	}
	return c.Inner
}

func (c SnappyCodec) Name() string { return "snappy+" + c.inner().Name() }

func (c SnappyCodec) EncodeBatch(triples []Triple) ([]byte, error) {
	raw, err := c.inner().EncodeBatch(triples)
	if err != nil {
		return nil, err
	}
	return snappy.Encode(nil, raw), nil
}

func (c SnappyCodec) DecodeBatch(data []byte) ([]Triple, error) {
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, bvgerrs.E(bvgerrs.KindFormat, "pairsort.SnappyCodec.DecodeBatch", err)
	}
	return c.inner().DecodeBatch(raw)
}

// highwayKey is a fixed, non-secret key: digests here guard against
// spill-file corruption and truncation, not against a hostile author of
// the file, so a per-process random key buys nothing.
var highwayKey = make([]byte, highwayhash.Size)

// checksum returns a HighwayHash digest of encoded batch bytes, stored
// alongside each spill file so a truncated or corrupted shard is caught
// at merge time rather than silently producing a wrong graph, the same
// highwayhash.Sum call fusion/postprocess.go uses to key its candidate
// map (there over gene-id pairs, here over a whole encoded batch).
func checksum(data []byte) [highwayhash.Size]byte {
	return highwayhash.Sum(data, highwayKey)
}

const spillMagic = uint32(0x50534f31) // "PSO1"

// writeSpillFile writes one spilled batch: a small header (magic, codec
// name, digest, payload length) followed by the codec-encoded payload.
func writeSpillFile(w io.Writer, codecName string, digest [highwayhash.Size]byte, payload []byte) error {
	nameBytes := []byte(codecName)
	if len(nameBytes) > 255 {
		return bvgerrs.E(bvgerrs.KindFormat, "pairsort.writeSpillFile", "codec name too long")
	}
	if err := binary.Write(w, binary.LittleEndian, spillMagic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint8(len(nameBytes))); err != nil {
		return err
	}
	if _, err := w.Write(nameBytes); err != nil {
		return err
	}
	if _, err := w.Write(digest[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(payload))); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// readSpillFile reads back a file written by writeSpillFile, verifying
// the digest matches before handing the payload to the caller.
func readSpillFile(r io.Reader) (codecName string, payload []byte, err error) {
	var magic uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return "", nil, err
	}
	if magic != spillMagic {
		return "", nil, bvgerrs.E(bvgerrs.KindFormat, "pairsort.readSpillFile", "bad magic")
	}
	var nameLen uint8
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return "", nil, err
	}
	nameBytes := make([]byte, nameLen)
	if _, err := io.ReadFull(r, nameBytes); err != nil {
		return "", nil, err
	}
	var digest [highwayhash.Size]byte
	if _, err := io.ReadFull(r, digest[:]); err != nil {
		return "", nil, err
	}
	var payloadLen uint64
	if err := binary.Read(r, binary.LittleEndian, &payloadLen); err != nil {
		return "", nil, err
	}
	payload = make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return "", nil, err
	}
	if checksum(payload) != digest {
		return "", nil, bvgerrs.E(bvgerrs.KindIntegrity, "pairsort.readSpillFile", "digest mismatch: corrupt spill file")
	}
	return string(nameBytes), payload, nil
}
