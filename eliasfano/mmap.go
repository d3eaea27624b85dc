package eliasfano

import (
	"bufio"
	"encoding/binary"
	"os"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/dsi-unimi/bvgraph-go/bvgerrs"
)

// efMagic identifies a serialized Elias-Fano index file.
const efMagic = uint64(0x4546314e4f444553) // "EF1NODES" read as a big-endian word

// headerWords is the number of uint64 header fields, kept 8-byte aligned
// so the high-bits word array can be mmapped and reinterpreted in place
// without a copy, the same layout discipline fusion/kmer_index.go relies
// on for its page-aligned table region.
const headerWords = 6

// Save writes idx to path as a single flat file: a fixed header, the
// high-bits word array, then the packed low bits.
func (idx *Index) Save(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return bvgerrs.E(bvgerrs.KindIO, "eliasfano.Save", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = bvgerrs.E(bvgerrs.KindIO, "eliasfano.Save", path, cerr)
		}
	}()

	w := bufio.NewWriter(f)
	header := [headerWords]uint64{
		efMagic,
		uint64(idx.n),
		idx.u,
		uint64(idx.l),
		uint64(len(idx.high.words)),
		uint64(len(idx.low)),
	}
	if err := binary.Write(w, binary.LittleEndian, header[:]); err != nil {
		return bvgerrs.E(bvgerrs.KindIO, "eliasfano.Save", path, err)
	}
	if err := binary.Write(w, binary.LittleEndian, idx.high.words); err != nil {
		return bvgerrs.E(bvgerrs.KindIO, "eliasfano.Save", path, err)
	}
	if _, err := w.Write(idx.low); err != nil {
		return bvgerrs.E(bvgerrs.KindIO, "eliasfano.Save", path, err)
	}
	if err := w.Flush(); err != nil {
		return bvgerrs.E(bvgerrs.KindIO, "eliasfano.Save", path, err)
	}
	return nil
}

// Load reads an index file fully into memory and rebuilds its
// rank/select side table.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, bvgerrs.E(bvgerrs.KindIO, "eliasfano.Load", path, err)
	}
	return parse(data, nil)
}

// LoadMmap memory-maps path read-only and reinterprets the high-bits
// word array and low-bits bytes directly over the mapping, avoiding a
// copy of the (potentially large) index. The returned closer must be
// called to munmap when the Index is no longer needed; the Index must
// not be used afterward.
func LoadMmap(path string) (*Index, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, bvgerrs.E(bvgerrs.KindIO, "eliasfano.LoadMmap", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, nil, bvgerrs.E(bvgerrs.KindIO, "eliasfano.LoadMmap", path, err)
	}
	size := int(fi.Size())
	if size == 0 {
		return nil, nil, bvgerrs.E(bvgerrs.KindFormat, "eliasfano.LoadMmap", path, errors.New("empty file"))
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, bvgerrs.E(bvgerrs.KindIO, "eliasfano.LoadMmap", path, err)
	}
	if err := unix.Madvise(data, unix.MADV_RANDOM); err != nil {
		unix.Munmap(data)
		return nil, nil, bvgerrs.E(bvgerrs.KindIO, "eliasfano.LoadMmap", path, err)
	}

	idx, err := parse(data, data)
	if err != nil {
		unix.Munmap(data)
		return nil, nil, err
	}
	closer := func() error {
		if err := unix.Munmap(data); err != nil {
			return bvgerrs.E(bvgerrs.KindIO, "eliasfano.Close", path, err)
		}
		return nil
	}
	return idx, closer, nil
}

// parse interprets data as a serialized Index. If backing is non-nil,
// the high-bits words and low bytes alias it directly (the mmap path);
// otherwise they are copied out of data (the plain-Load path, where
// data already owns a private copy read from the file).
func parse(data []byte, backing []byte) (*Index, error) {
	if len(data) < headerWords*8 {
		return nil, bvgerrs.E(bvgerrs.KindFormat, "eliasfano.parse", "file too short")
	}
	var header [headerWords]uint64
	for i := range header {
		header[i] = binary.LittleEndian.Uint64(data[i*8 : i*8+8])
	}
	if header[0] != efMagic {
		return nil, bvgerrs.E(bvgerrs.KindFormat, "eliasfano.parse", "bad magic")
	}
	n := int(header[1])
	u := header[2]
	l := uint(header[3])
	numHighWords := int(header[4])
	numLowBytes := int(header[5])

	off := headerWords * 8
	highBytes := numHighWords * 8
	if len(data) < off+highBytes+numLowBytes {
		return nil, bvgerrs.E(bvgerrs.KindFormat, "eliasfano.parse", "truncated file")
	}

	var highWords []uint64
	if numHighWords > 0 {
		if backing != nil {
			highWords = bytesToUint64Slice(data[off : off+highBytes])
		} else {
			highWords = make([]uint64, numHighWords)
			for i := 0; i < numHighWords; i++ {
				highWords[i] = binary.LittleEndian.Uint64(data[off+i*8 : off+i*8+8])
			}
		}
	}
	off += highBytes

	var low []byte
	if numLowBytes > 0 {
		if backing != nil {
			low = data[off : off+numLowBytes]
		} else {
			low = append([]byte(nil), data[off:off+numLowBytes]...)
		}
	}

	bv := &bitVector{words: highWords, nbits: highVectorBits(n, u, l)}
	return &Index{n: n, u: u, l: l, low: low, high: bv, rs: newRankSelect(bv)}, nil
}

func bytesToUint64Slice(b []byte) []uint64 {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Slice((*uint64)(unsafe.Pointer(&b[0])), len(b)/8)
}
