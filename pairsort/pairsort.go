// Package pairsort implements the external k-way merge sort of (src,
// dst[, label]) triples used to bring arc lists into canonical
// (src, dst) order before they reach the BV encoder, and to drive graph
// transposition. It follows the structure of cmd/bio-bam-sort/sorter:
// records accumulate in memory up to a batch size, background workers
// sort and spill full batches to temporary files, and Iter spills the
// remaining tail batch too and merges all spilled shards with a
// left-leaning red-black tree acting as a tournament-merge structure.
package pairsort

import (
	"bytes"
	"os"
	"sort"
	"sync"

	"github.com/grailbio/base/errors"
	"v.io/x/lib/vlog"

	"github.com/dsi-unimi/bvgraph-go/bvgerrs"
)

// Triple is one (src, dst[, label]) arc to be sorted.
type Triple struct {
	Src, Dst uint64
	Label    []byte
}

// compare orders triples by (Src, Dst, Label); nil and empty labels
// compare equal.
func (t Triple) compare(o Triple) int {
	switch {
	case t.Src < o.Src:
		return -1
	case t.Src > o.Src:
		return 1
	}
	switch {
	case t.Dst < o.Dst:
		return -1
	case t.Dst > o.Dst:
		return 1
	}
	return bytes.Compare(t.Label, o.Label)
}

// DefaultBatchSize is the number of triples kept in memory before a
// batch is sorted and spilled.
const DefaultBatchSize = 1 << 20

// DefaultParallelism is the number of concurrent background spill
// workers per Sorter.
const DefaultParallelism = 2

// Options controls a Sorter's behavior.
type Options struct {
	// BatchSize is the number of triples to accumulate before sorting
	// and spilling a batch. Zero selects DefaultBatchSize.
	BatchSize int
	// Parallelism bounds the number of concurrent spill workers. Zero
	// selects DefaultParallelism.
	Parallelism int
	// TmpDir is the directory spilled batch files are created in. It
	// must exist and be writable; "" uses the OS default.
	TmpDir string
	// Codec encodes/decodes spilled batches. Nil selects GapBitmapCodec,
	// the default gap-coded-destinations-per-source encoding.
	Codec BatchCodec
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.Parallelism <= 0 {
		o.Parallelism = DefaultParallelism
	}
	if o.Codec == nil {
		o.Codec = GapBitmapCodec{}
	}
	return o
}

type spillBatch struct {
	triples []Triple
	seq     int
}

// Sorter accumulates triples, spilling sorted batches to disk once the
// in-memory batch fills, and produces a single sorted Cursor on Iter.
type Sorter struct {
	opts  Options
	guard *tmpGuard

	mu      sync.Mutex
	pending []Triple
	nextSeq int

	spillCh chan spillBatch
	wg      sync.WaitGroup
	err     errors.Once

	shardMu sync.Mutex
	shards  []string
}

// NewSorter creates a Sorter whose spill files are written under a
// private directory inside opts.TmpDir. If the private directory cannot
// be created, construction still succeeds (the teacher's NewSorter
// returns no error either): the error is recorded and returned by Iter,
// and any batches spilled before then go to opts.TmpDir directly.
func NewSorter(opts Options) *Sorter {
	opts = opts.withDefaults()
	s := &Sorter{
		opts:    opts,
		spillCh: make(chan spillBatch, opts.Parallelism),
	}
	if guard, err := newTmpGuard(opts.TmpDir); err != nil {
		s.err.Set(err)
	} else {
		s.guard = guard
	}
	for i := 0; i < opts.Parallelism; i++ {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for batch := range s.spillCh {
				path := s.spill(batch)
				if path != "" {
					s.shardMu.Lock()
					s.shards = append(s.shards, path)
					s.shardMu.Unlock()
				}
			}
		}()
	}
	return s
}

// Push adds one triple. The sorter may take ownership of Label; callers
// should not mutate it afterward.
func (s *Sorter) Push(t Triple) {
	s.mu.Lock()
	s.pending = append(s.pending, t)
	full := len(s.pending) >= s.opts.BatchSize
	var batch spillBatch
	if full {
		batch = spillBatch{triples: s.pending, seq: s.nextSeq}
		s.nextSeq++
		s.pending = nil
	}
	s.mu.Unlock()
	if full {
		s.spillCh <- batch
	}
}

// PushAll pushes every triple in ts.
func (s *Sorter) PushAll(ts []Triple) {
	for _, t := range ts {
		s.Push(t)
	}
}

func (s *Sorter) spillDir() string {
	if s.guard != nil {
		return s.guard.dir
	}
	return s.opts.TmpDir
}

func (s *Sorter) spill(batch spillBatch) string {
	sort.Slice(batch.triples, func(i, j int) bool {
		return batch.triples[i].compare(batch.triples[j]) < 0
	})
	f, err := os.CreateTemp(s.spillDir(), "pairsort-*.batch")
	if err != nil {
		s.fail(bvgerrs.E(bvgerrs.KindIO, "pairsort.spill", err))
		return ""
	}
	defer f.Close()

	encoded, err := s.opts.Codec.EncodeBatch(batch.triples)
	if err != nil {
		s.fail(bvgerrs.E(bvgerrs.KindFormat, "pairsort.spill", err))
		return ""
	}
	digest := checksum(encoded)
	if err := writeSpillFile(f, s.opts.Codec.Name(), digest, encoded); err != nil {
		s.fail(bvgerrs.E(bvgerrs.KindIO, "pairsort.spill", f.Name(), err))
		return ""
	}
	vlog.VI(1).Infof("pairsort: spilled %d triples to %s", len(batch.triples), f.Name())
	return f.Name()
}

// fail records err and leaves the spill directory in place for
// inspection instead of letting Iter's later cleanup remove it.
func (s *Sorter) fail(err error) {
	s.err.Set(err)
	if s.guard != nil {
		s.guard.leaveOnError()
	}
}

// flushTail spills whatever is left in the in-memory batch, even if it
// is smaller than BatchSize; called once by Iter/Close.
func (s *Sorter) flushTail() {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	if len(pending) == 0 {
		return
	}
	batch := spillBatch{triples: pending, seq: s.nextSeq}
	s.nextSeq++
	if path := s.spill(batch); path != "" {
		s.shardMu.Lock()
		s.shards = append(s.shards, path)
		s.shardMu.Unlock()
	}
}

// Iter flushes any pending triples and returns a Cursor over every
// triple pushed so far, in ascending (Src, Dst, Label) order. Iter (and
// therefore the Sorter) may only be used once.
func (s *Sorter) Iter() (Cursor, error) {
	s.flushTail()
	close(s.spillCh)
	s.wg.Wait()
	if err := s.err.Err(); err != nil {
		return nil, err
	}
	return newMergeCursor(s.shards, s.opts.Codec, s.guard)
}

// Sort is a convenience wrapper: push every triple in ts, then Iter.
func (s *Sorter) Sort(ts []Triple) (Cursor, error) {
	s.PushAll(ts)
	return s.Iter()
}

// Cleanup removes every spill file created by this Sorter that was not
// already removed by the Cursor returned from Iter; callers that never
// call Iter (e.g. because spilling itself failed) use this to avoid
// leaking temp files.
func (s *Sorter) Cleanup() error {
	var firstErr error
	for _, path := range s.shards {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	if s.guard != nil {
		if err := s.guard.release(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
