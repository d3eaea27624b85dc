// Package llp implements layered label propagation: community labels are
// assigned by iterating label propagation once per resolution parameter γ,
// then combined into a single labeling whose node order, once applied as a
// permutation, tends to compress noticeably better under the BV codec.
// Ported from original_source/algo/src/llp/mod.rs, whose sibling modules
// label_store.rs, gap_cost.rs, preds.rs and mix64.rs were referenced by
// name there but not retrieved into the pack; label_store, gapcost,
// predicate and labelcounts in this package rebuild their call-site
// contracts rather than their bodies.
package llp

import (
	"io/ioutil"
	"math"
	"math/rand"
	"os"
	"sync/atomic"

	"v.io/x/lib/vlog"

	"github.com/grailbio/base/traverse"

	"github.com/dsi-unimi/bvgraph-go/bvgerrs"
	"github.com/dsi-unimi/bvgraph-go/graph"
)

const improvWindow = 10

// Run performs a full layered-label-propagation run: one pass per γ in
// opts.Gammas followed by combination, returning the final per-node
// labels. If opts.WorkDir is empty, Run uses a temporary directory and
// removes it before returning.
func Run(g graph.RandomAccessLabeling, opts Options) ([]uint64, error) {
	workDir := opts.WorkDir
	if workDir == "" {
		dir, err := ioutil.TempDir("", "llp-")
		if err != nil {
			return nil, bvgerrs.E(bvgerrs.KindIO, "llp.Run", err)
		}
		defer os.RemoveAll(dir)
		workDir = dir
		opts.WorkDir = workDir
	}
	if err := RunLabelsOnly(g, opts); err != nil {
		return nil, err
	}
	return CombineLabels(workDir, opts.RecombineWithBest)
}

// RunLabelsOnly runs label propagation for every γ in opts.Gammas and
// writes each result's labels, gamma and log-gap cost to
// opts.WorkDir/labels_{k}.bin, without combining them — the Go counterpart
// of layered_label_propagation_labels_only.
func RunLabelsOnly(g graph.RandomAccessLabeling, opts Options) error {
	numNodes := g.NumNodes()
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = traverseParallelism(int(numNodes))
	}

	canChange := make([]int32, numNodes)
	store := newLabelStore(numNodes)
	seedCounter := opts.Seed

	hashMapInit := 16
	if numNodes > 0 {
		if avg := g.NumArcs() / numNodes; avg > 16 {
			hashMapInit = int(avg)
		}
	}

	for gammaIndex, gamma := range opts.Gammas {
		for i := range canChange {
			canChange[i] = 1
		}
		store.init()

		objFunc := 0.0
		prevGain := math.MaxFloat64
		improv := make([]float64, improvWindow)
		for i := range improv {
			improv[i] = 1.0
		}
		improvPos := 0

		for update := 0; ; update++ {
			updatePerm := make([]uint64, numNodes)
			for i := range updatePerm {
				updatePerm[i] = uint64(i)
			}
			shuffleChunked(updatePerm, opts.chunkSize(), &seedCounter)

			modified := int64(0)
			ranges := graph.Split(numNodes, parallelism)
			partial := make([]float64, len(ranges))

			_ = traverse.Each(len(ranges), func(i int) error {
				r := ranges[i]
				rng := rand.New(rand.NewSource(int64(r.Start)))
				counts := newLabelCounts(hashMapInit)
				var localObj float64

				for _, node := range updatePerm[r.Start:r.End] {
					if atomic.LoadInt32(&canChange[node]) == 0 {
						continue
					}
					atomic.StoreInt32(&canChange[node], 0)

					successors := g.Labels(node)
					if len(successors) == 0 {
						continue
					}
					currLabel := store.label(node)

					counts.reset()
					for _, s := range successors {
						counts.add(store.label(s.To), 1)
					}
					counts.ensure(currLabel)

					max := math.Inf(-1)
					var old float64
					var majorities []uint64
					counts.each(func(label uint64, count int) {
						volume := store.volume(label)
						val := (1 + gamma) * float64(count) - gamma*float64(volume+1)
						switch {
						case val == max:
							majorities = append(majorities, label)
						case val > max:
							max = val
							majorities = majorities[:0]
							majorities = append(majorities, label)
						}
						if label == currLabel {
							old = val
						}
					})

					nextLabel := majorities[rng.Intn(len(majorities))]
					if nextLabel != currLabel {
						atomic.AddInt64(&modified, 1)
						for _, s := range successors {
							atomic.StoreInt32(&canChange[s.To], 1)
						}
						store.update(node, nextLabel)
					}
					localObj += max - old
				}
				partial[i] = localObj
				return nil
			})

			var deltaObjFunc float64
			for _, p := range partial {
				deltaObjFunc += p
			}
			objFunc += deltaObjFunc
			gain := safeDiv(deltaObjFunc, objFunc)
			gainImpr := safeDiv(prevGain-gain, prevGain)
			prevGain = gain
			improv[improvPos%improvWindow] = gainImpr
			improvPos++
			var avgGainImpr float64
			for _, v := range improv {
				avgGainImpr += v
			}
			avgGainImpr /= improvWindow

			modifiedCount := uint64(modified)
			vlog.VI(2).Infof("llp: gamma=%v update=%d gain=%v avgGainImpr=%v modified=%d",
				gamma, update, gain, avgGainImpr, modifiedCount)

			stop := modifiedCount == 0
			if opts.Predicate != nil && opts.Predicate.Eval(PredParams{
				NumNodes:           numNodes,
				NumArcs:            g.NumArcs(),
				Gain:               gain,
				AvgGainImprovement: avgGainImpr,
				Modified:           modifiedCount,
				Update:             update,
			}) {
				stop = true
			}
			if stop {
				break
			}
		}

		labels, _ := store.labelsAndVolumes()
		labelsCopy := make([]uint64, len(labels))
		copy(labelsCopy, labels)

		ranks := LabelsToRanks(labelsCopy)
		gapCost := computeLogGapCost(g, ranks)

		vlog.VI(1).Infof("llp: gamma=%v log-gap cost=%v", gamma, gapCost)

		path := artifactPath(opts.WorkDir, gammaIndex)
		if err := writeArtifact(path, labelsArtifact{GapCost: gapCost, Gamma: gamma, Labels: labelsCopy}); err != nil {
			return err
		}
	}
	return nil
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// shuffleChunked randomly permutes perm within fixed-size chunks: each
// chunk is shuffled independently (no element leaves its chunk) with a
// PRNG seeded from *seedCounter, incrementing
// *seedCounter once per chunk — the Go counterpart of mod.rs's
// `update_perm.par_chunks_mut(chunk_size)` shuffle.
func shuffleChunked(perm []uint64, chunkSize int, seedCounter *uint64) {
	if chunkSize <= 0 {
		chunkSize = len(perm)
	}
	numChunks := (len(perm) + chunkSize - 1) / chunkSize
	if numChunks == 0 {
		return
	}
	_ = traverse.Each(numChunks, func(i int) error {
		start := i * chunkSize
		end := start + chunkSize
		if end > len(perm) {
			end = len(perm)
		}
		seed := atomic.AddUint64(seedCounter, 1) - 1
		rng := rand.New(rand.NewSource(int64(seed)))
		chunk := perm[start:end]
		rng.Shuffle(len(chunk), func(a, b int) { chunk[a], chunk[b] = chunk[b], chunk[a] })
		return nil
	})
}
