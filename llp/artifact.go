package llp

import (
	"encoding/binary"
	"fmt"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gogo/protobuf/proto"
	"github.com/klauspost/compress/zstd"

	"github.com/dsi-unimi/bvgraph-go/bvgerrs"
)

// labelsArtifact is the on-disk shape of one γ's result: the Go counterpart
// of mod.rs's `LabelsStore<A>` (gap_cost, gamma, labels), ε-serialized
// there and here zstd-compressed instead (no ε-serde equivalent exists in
// the pack; zstd is the compression library the pack already uses
// elsewhere for large flat artifacts, e.g. encoding/fastq/downsample.go).
// Each label is varint-encoded with gogo/protobuf's EncodeVarint/
// DecodeVarint, since the labels array is overwhelmingly made of small,
// similar values after a γ run and a flat binary.Write would waste 4-7
// bytes per entry compared to most labels' actual magnitude.
type labelsArtifact struct {
	GapCost float64
	Gamma   float64
	Labels  []uint64
}

func artifactPath(workDir string, gammaIndex int) string {
	return filepath.Join(workDir, fmt.Sprintf("labels_%d.bin", gammaIndex))
}

func writeArtifact(path string, a labelsArtifact) error {
	f, err := os.Create(path)
	if err != nil {
		return bvgerrs.E(bvgerrs.KindIO, "llp.writeArtifact", err, path)
	}
	defer f.Close()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return bvgerrs.E(bvgerrs.KindIO, "llp.writeArtifact", err, path)
	}

	var header [16]byte
	binary.BigEndian.PutUint64(header[0:8], math.Float64bits(a.GapCost))
	binary.BigEndian.PutUint64(header[8:16], math.Float64bits(a.Gamma))
	if _, err := zw.Write(header[:]); err != nil {
		zw.Close()
		return bvgerrs.E(bvgerrs.KindIO, "llp.writeArtifact", err, path)
	}

	countBuf := proto.EncodeVarint(uint64(len(a.Labels)))
	if _, err := zw.Write(countBuf); err != nil {
		zw.Close()
		return bvgerrs.E(bvgerrs.KindIO, "llp.writeArtifact", err, path)
	}
	for _, label := range a.Labels {
		buf := proto.EncodeVarint(label)
		if _, err := zw.Write(buf); err != nil {
			zw.Close()
			return bvgerrs.E(bvgerrs.KindIO, "llp.writeArtifact", err, path)
		}
	}

	if err := zw.Close(); err != nil {
		return bvgerrs.E(bvgerrs.KindIO, "llp.writeArtifact", err, path)
	}
	return nil
}

func readArtifact(path string) (labelsArtifact, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return labelsArtifact{}, bvgerrs.E(bvgerrs.KindIO, "llp.readArtifact", err, path)
	}
	zr, err := zstd.NewReader(nil)
	if err != nil {
		return labelsArtifact{}, bvgerrs.E(bvgerrs.KindIO, "llp.readArtifact", err, path)
	}
	defer zr.Close()
	data, err := zr.DecodeAll(raw, nil)
	if err != nil {
		return labelsArtifact{}, bvgerrs.E(bvgerrs.KindFormat, "llp.readArtifact", err, path)
	}

	if len(data) < 16 {
		return labelsArtifact{}, bvgerrs.E(bvgerrs.KindFormat, "llp.readArtifact", "truncated header", path)
	}
	a := labelsArtifact{
		GapCost: math.Float64frombits(binary.BigEndian.Uint64(data[0:8])),
		Gamma:   math.Float64frombits(binary.BigEndian.Uint64(data[8:16])),
	}
	rest := data[16:]

	count, n := proto.DecodeVarint(rest)
	if n == 0 {
		return labelsArtifact{}, bvgerrs.E(bvgerrs.KindFormat, "llp.readArtifact", "malformed label count", path)
	}
	rest = rest[n:]

	a.Labels = make([]uint64, 0, count)
	for i := uint64(0); i < count; i++ {
		v, n := proto.DecodeVarint(rest)
		if n == 0 {
			return labelsArtifact{}, bvgerrs.E(bvgerrs.KindFormat, "llp.readArtifact", "malformed label entry", path)
		}
		a.Labels = append(a.Labels, v)
		rest = rest[n:]
	}
	return a, nil
}

// listArtifacts returns every labels_*.bin file in workDir, the Go
// counterpart of combine_labels's read_dir + filename filter.
func listArtifacts(workDir string) ([]string, error) {
	entries, err := ioutil.ReadDir(workDir)
	if err != nil {
		return nil, bvgerrs.E(bvgerrs.KindIO, "llp.listArtifacts", err, workDir)
	}
	var paths []string
	for _, e := range entries {
		name := e.Name()
		if e.Mode().IsRegular() && strings.HasPrefix(name, "labels_") && strings.HasSuffix(name, ".bin") {
			paths = append(paths, filepath.Join(workDir, name))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
