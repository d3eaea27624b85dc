package llp

import (
	farm "github.com/dgryski/go-farm"

	"github.com/dsi-unimi/bvgraph-go/circular"
)

// labelCounts is a small open-addressing map from label to neighbor count,
// reused across nodes in the update loop's hot path to avoid reallocating a
// stdlib map per node. It is the Go counterpart of mod.rs's
// `HashMap::with_capacity_and_hasher(hash_map_init, mix64::Mix64Builder)`:
// mix64.rs was not retrieved, but fusion/kmer_index.go already hashes a
// single integer key the same way this package needs to (no input bytes,
// just the value folded through the seed argument), so labelCounts reuses
// that exact call shape instead of inventing a new mixer.
type labelCounts struct {
	keys []uint64
	cnts []int
	used []bool
	mask uint64
	size int
}

// newLabelCounts returns an empty table sized to comfortably hold
// capacityHint entries without rehashing during one node's scan.
func newLabelCounts(capacityHint int) *labelCounts {
	n := 8
	if want := capacityHint * 2; want > n {
		n = circular.NextExp2(want - 1)
	}
	return &labelCounts{
		keys: make([]uint64, n),
		cnts: make([]int, n),
		used: make([]bool, n),
		mask: uint64(n - 1),
	}
}

func (m *labelCounts) reset() {
	for i := range m.used {
		m.used[i] = false
	}
	m.size = 0
}

func (m *labelCounts) slot(label uint64) int {
	i := farm.Hash64WithSeed(nil, label) & m.mask
	for m.used[i] && m.keys[i] != label {
		i = (i + 1) & m.mask
	}
	return int(i)
}

// add increments label's count by delta, inserting it with count delta if
// absent. It grows the table (doubling and rehashing) before it would
// exceed half capacity, since labelCounts is reused across nodes of
// unbounded degree.
func (m *labelCounts) add(label uint64, delta int) {
	if m.size*2 >= len(m.used) {
		m.grow()
	}
	i := m.slot(label)
	if !m.used[i] {
		m.used[i] = true
		m.keys[i] = label
		m.size++
	}
	m.cnts[i] += delta
}

// ensure records label with count 0 if it is not already present, the Go
// counterpart of mod.rs's `map.entry(curr_label).or_insert(0)`.
func (m *labelCounts) ensure(label uint64) {
	if m.size*2 >= len(m.used) {
		m.grow()
	}
	i := m.slot(label)
	if !m.used[i] {
		m.used[i] = true
		m.keys[i] = label
		m.size++
	}
}

func (m *labelCounts) get(label uint64) (int, bool) {
	i := m.slot(label)
	if !m.used[i] {
		return 0, false
	}
	return m.cnts[i], true
}

func (m *labelCounts) grow() {
	old := *m
	n := len(old.used) * 2
	m.keys = make([]uint64, n)
	m.cnts = make([]int, n)
	m.used = make([]bool, n)
	m.mask = uint64(n - 1)
	m.size = 0
	for i, used := range old.used {
		if used {
			m.add(old.keys[i], old.cnts[i])
		}
	}
}

// each calls fn once per (label, count) entry, in unspecified order.
func (m *labelCounts) each(fn func(label uint64, count int)) {
	for i, used := range m.used {
		if used {
			fn(m.keys[i], m.cnts[i])
		}
	}
}
