package pairsort

import (
	"sync"

	"github.com/grailbio/base/errors"
)

// ParallelSorter partitions triples by Src into contiguous, disjoint
// ranges and runs one Sorter per partition concurrently, the same
// source-range sharding the random-access BV decoder uses to split a
// graph across workers. Because partitions are contiguous and strictly
// increasing in Src, the partitions' sorted outputs can simply be
// concatenated in partition order to recover one globally sorted
// Cursor; no cross-partition merge step is needed.
type ParallelSorter struct {
	n          uint64
	partitions []*Sorter
}

// NewParallelSorter prepares parallelism independent sorters covering
// source ids [0, n). opts is used as the template for every partition's
// Sorter; each partition's Sorter creates its own private spill
// directory inside opts.TmpDir.
func NewParallelSorter(n uint64, opts Options) *ParallelSorter {
	opts = opts.withDefaults()
	p := &ParallelSorter{n: n, partitions: make([]*Sorter, opts.Parallelism)}
	for i := range p.partitions {
		p.partitions[i] = NewSorter(opts)
	}
	return p
}

func (p *ParallelSorter) partitionOf(src uint64) int {
	if p.n == 0 {
		return 0
	}
	idx := int(src * uint64(len(p.partitions)) / p.n)
	if idx >= len(p.partitions) {
		idx = len(p.partitions) - 1
	}
	return idx
}

// Push routes t to the sorter owning t.Src's partition.
func (p *ParallelSorter) Push(t Triple) {
	p.partitions[p.partitionOf(t.Src)].Push(t)
}

// Iter flushes and merges every partition concurrently, then returns a
// Cursor over the full, globally sorted stream.
func (p *ParallelSorter) Iter() (Cursor, error) {
	cursors := make([]Cursor, len(p.partitions))
	var wg sync.WaitGroup
	var once errors.Once
	for i, s := range p.partitions {
		wg.Add(1)
		go func(i int, s *Sorter) {
			defer wg.Done()
			c, err := s.Iter()
			if err != nil {
				once.Set(err)
				return
			}
			cursors[i] = c
		}(i, s)
	}
	wg.Wait()
	if err := once.Err(); err != nil {
		for _, c := range cursors {
			if c != nil {
				c.Close()
			}
		}
		return nil, err
	}
	return &concatCursor{cursors: cursors}, nil
}

// concatCursor drains a sequence of Cursors in order, relying on the
// caller having already established that later cursors' values all
// exceed earlier cursors' values (true of ParallelSorter's range
// partitioning).
type concatCursor struct {
	cursors []Cursor
	idx     int
}

func (c *concatCursor) Next() bool {
	for c.idx < len(c.cursors) {
		if c.cursors[c.idx].Next() {
			return true
		}
		c.idx++
	}
	return false
}

func (c *concatCursor) Triple() Triple { return c.cursors[c.idx].Triple() }

func (c *concatCursor) Err() error {
	for _, cur := range c.cursors {
		if err := cur.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (c *concatCursor) Close() error {
	var firstErr error
	for _, cur := range c.cursors {
		if err := cur.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
