package llp

import "sync/atomic"

// labelStore holds every node's current label and every label's volume
// (the count of nodes currently carrying it), the Go counterpart of
// label_store.rs's LabelStore (referenced but not retrieved: rebuilt here
// from its call sites in mod.rs). Volumes are updated with relaxed
// atomic adds since multiple goroutines update different nodes' labels
// concurrently during one pass, and two nodes can legitimately gain or
// lose the same label in the same pass.
type labelStore struct {
	labels  []uint64
	volumes []int64
}

func newLabelStore(numNodes uint64) *labelStore {
	return &labelStore{
		labels:  make([]uint64, numNodes),
		volumes: make([]int64, numNodes),
	}
}

// init resets every node to its own label as a singleton community, the
// state at the start of each γ's run.
func (s *labelStore) init() {
	for i := range s.labels {
		s.labels[i] = uint64(i)
		s.volumes[i] = 1
	}
	for i := len(s.labels); i < len(s.volumes); i++ {
		s.volumes[i] = 0
	}
}

func (s *labelStore) label(node uint64) uint64 { return s.labels[node] }

func (s *labelStore) volume(label uint64) int64 {
	return atomic.LoadInt64(&s.volumes[label])
}

// update moves node from its current label to next, adjusting both
// labels' volumes. It must only be called by the single goroutine that
// owns node for the current update pass.
func (s *labelStore) update(node, next uint64) {
	cur := s.labels[node]
	atomic.AddInt64(&s.volumes[cur], -1)
	atomic.AddInt64(&s.volumes[next], 1)
	s.labels[node] = next
}

// labelsAndVolumes returns the live labels and volumes slices (not
// copies), for combine-step use once a γ's iteration has converged.
func (s *labelStore) labelsAndVolumes() ([]uint64, []int64) {
	return s.labels, s.volumes
}
