package pairsort

import (
	"os"

	"v.io/x/lib/vlog"

	"github.com/dsi-unimi/bvgraph-go/bvgerrs"
)

// tmpGuard owns a Sorter's private spill directory. It is removed once
// the Sorter's output has been fully consumed without error; on any
// failure it is left on disk (logged) so a partial artifact can be
// inspected rather than silently destroyed, per this package's scoped
// temp-directory-cleanup policy.
type tmpGuard struct {
	dir  string
	keep bool
}

func newTmpGuard(parent string) (*tmpGuard, error) {
	dir, err := os.MkdirTemp(parent, "pairsort-")
	if err != nil {
		return nil, bvgerrs.E(bvgerrs.KindIO, "pairsort.newTmpGuard", err)
	}
	return &tmpGuard{dir: dir}, nil
}

// leaveOnError marks the directory to survive release, for the caller
// that hit the failure to report its path.
func (g *tmpGuard) leaveOnError() {
	if g.keep {
		return
	}
	g.keep = true
	vlog.Errorf("pairsort: leaving spill directory %s in place after error", g.dir)
}

// release removes the directory unless it was already marked to be
// kept. Safe to call once all files the caller placed in it have
// already been removed individually (RemoveAll tolerates stragglers).
func (g *tmpGuard) release() error {
	if g.keep {
		return nil
	}
	if err := os.RemoveAll(g.dir); err != nil {
		return bvgerrs.E(bvgerrs.KindIO, "pairsort.tmpGuard.release", g.dir, err)
	}
	return nil
}
