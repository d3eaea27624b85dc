package pairsort

import (
	"os"

	"github.com/biogo/store/llrb"

	"github.com/dsi-unimi/bvgraph-go/bvgerrs"
)

// Cursor yields triples in ascending order; call Next before the first
// Triple. A Cursor must be Closed once exhausted or abandoned.
type Cursor interface {
	Next() bool
	Triple() Triple
	Err() error
	Close() error
}

// shardCursor streams the triples of one spilled batch file. Batches are
// decoded whole into memory on open (they are bounded by BatchSize),
// trading the block-at-a-time streaming of sortShardReader for a
// simpler reader now that a batch's encoded form is already bounded.
type shardCursor struct {
	path    string
	triples []Triple
	idx     int
}

func newShardCursor(path string, codec BatchCodec) (*shardCursor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, bvgerrs.E(bvgerrs.KindIO, "pairsort.newShardCursor", path, err)
	}
	defer f.Close()

	codecName, payload, err := readSpillFile(f)
	if err != nil {
		kind := bvgerrs.KindFormat
		if bvgerrs.Is(err, bvgerrs.KindIntegrity) {
			kind = bvgerrs.KindIntegrity
		}
		return nil, bvgerrs.E(kind, "pairsort.newShardCursor", path, err)
	}
	if codecName != codec.Name() {
		return nil, bvgerrs.E(bvgerrs.KindFormat, "pairsort.newShardCursor", path,
			"spill file encoded with codec "+codecName+", merge requested "+codec.Name())
	}
	triples, err := codec.DecodeBatch(payload)
	if err != nil {
		return nil, bvgerrs.E(bvgerrs.KindFormat, "pairsort.newShardCursor", path, err)
	}
	return &shardCursor{path: path, triples: triples, idx: -1}, nil
}

// advance moves to the next triple, returning false once exhausted.
func (c *shardCursor) advance() bool {
	c.idx++
	return c.idx < len(c.triples)
}

func (c *shardCursor) triple() Triple { return c.triples[c.idx] }

// mergeLeaf is one shard's position in the tournament tree, the same
// role sort.go's mergeLeaf plays over sortShardReader.
type mergeLeaf struct {
	seq    int
	cursor *shardCursor
}

func (l *mergeLeaf) Compare(other llrb.Comparable) int {
	o := other.(*mergeLeaf)
	if c := l.cursor.triple().compare(o.cursor.triple()); c != 0 {
		return c
	}
	return l.seq - o.seq
}

// mergeCursor merges any number of shardCursors with a left-leaning
// red-black tree acting as the tournament structure: the smallest leaf
// sits at the tree's minimum, so each step is a DeleteMin/Insert pair,
// as in internalMergeShards. Unlike internalMergeShards, each step pops
// exactly one record rather than draining a dominant leaf first; simpler
// at the cost of one extra tree rebalance per record when one shard runs
// long, which does not matter at the shard counts this package expects.
type mergeCursor struct {
	tree   llrb.Tree
	cur    Triple
	err    error
	shards []*shardCursor
	paths  []string
	guard  *tmpGuard
}

func newMergeCursor(shardPaths []string, codec BatchCodec, guard *tmpGuard) (Cursor, error) {
	m := &mergeCursor{paths: shardPaths, guard: guard}
	for i, path := range shardPaths {
		sc, err := newShardCursor(path, codec)
		if err != nil {
			m.Close()
			if guard != nil {
				guard.leaveOnError()
			}
			return nil, err
		}
		m.shards = append(m.shards, sc)
		if sc.advance() {
			m.tree.Insert(&mergeLeaf{seq: i, cursor: sc})
		}
	}
	return m, nil
}

func (m *mergeCursor) Next() bool {
	if m.err != nil || m.tree.Len() == 0 {
		return false
	}
	// Tree does not expose a direct Min accessor; walk to the first item
	// in sorted order, the same trick internalMergeShards uses to find
	// its "top" leaf.
	var min *mergeLeaf
	m.tree.Do(func(item llrb.Comparable) bool {
		min = item.(*mergeLeaf)
		return true
	})
	m.cur = min.cursor.triple()
	m.tree.DeleteMin()
	if min.cursor.advance() {
		m.tree.Insert(min)
	}
	return true
}

func (m *mergeCursor) Triple() Triple { return m.cur }
func (m *mergeCursor) Err() error     { return m.err }

// Close removes every spilled shard file, then, if every removal
// succeeded and no read error was ever recorded, releases the owning
// Sorter's spill directory. Any failure leaves the directory in place.
func (m *mergeCursor) Close() error {
	var firstErr error
	for _, path := range m.paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	if m.guard == nil {
		return firstErr
	}
	if firstErr != nil || m.err != nil {
		m.guard.leaveOnError()
		return firstErr
	}
	if err := m.guard.release(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
