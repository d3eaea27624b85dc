package llp

import (
	"sort"

	"v.io/x/lib/vlog"

	"github.com/dsi-unimi/bvgraph-go/bvgerrs"
)

// CombineLabels reads every labels_{k}.bin artifact RunLabelsOnly wrote to
// workDir and folds them into one final labeling, the Go counterpart of
// combine_labels: labelings are ordered worst-to-best by log-gap cost, the
// best one seeds the result, and every labeling in that order (the best
// one included, last) is folded in with combine; when recombineWithBest is true (the original's
// unconditional behavior, an empirical stability trick attributed to the
// Java reference and not in the paper) the best labeling is re-applied
// after every fold.
func CombineLabels(workDir string, recombineWithBest bool) ([]uint64, error) {
	paths, err := listArtifacts(workDir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, bvgerrs.E(bvgerrs.KindInvariant, "llp.CombineLabels", "no labels artifacts found", workDir)
	}

	artifacts := make([]labelsArtifact, 0, len(paths))
	var numNodes int = -1
	for _, p := range paths {
		a, err := readArtifact(p)
		if err != nil {
			return nil, err
		}
		if numNodes == -1 {
			numNodes = len(a.Labels)
		} else if len(a.Labels) != numNodes {
			return nil, bvgerrs.E(bvgerrs.KindInvariant, "llp.CombineLabels", "artifact label count mismatch", p)
		}
		artifacts = append(artifacts, a)
	}

	// Worst (highest cost) first, best (lowest cost) last.
	sort.Slice(artifacts, func(i, j int) bool { return artifacts[i].GapCost > artifacts[j].GapCost })
	best := artifacts[len(artifacts)-1]

	vlog.VI(1).Infof("llp: best gamma=%v cost=%v, worst gamma=%v cost=%v",
		best.Gamma, best.GapCost, artifacts[0].Gamma, artifacts[0].GapCost)

	result := make([]uint64, numNodes)
	copy(result, best.Labels)
	tempPerm := make([]int, numNodes)

	for i, a := range artifacts {
		if _, err := combine(result, a.Labels, tempPerm); err != nil {
			return nil, err
		}
		if recombineWithBest {
			if _, err := combine(result, best.Labels, tempPerm); err != nil {
				return nil, err
			}
		}
		vlog.VI(2).Infof("llp: combined step %d with gamma=%v cost=%v", i, a.Gamma, a.GapCost)
	}

	return result, nil
}
