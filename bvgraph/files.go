package bvgraph

import (
	"context"
	"io/ioutil"

	grailerrors "github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/pkg/errors"
	"v.io/x/lib/vlog"

	"github.com/dsi-unimi/bvgraph-go/bitio"
	"github.com/dsi-unimi/bvgraph-go/graph"
)

// CompressGraphToFiles runs CompressGraph and writes the three resulting
// artifacts atomically to basePath+".graph", basePath+".offsets" and
// basePath+".properties", using file.Create so a crash mid-write never
// leaves a half-written file at the final path. This mirrors how
// encoding/converter.ConvertToBAM stages its BAM output through
// file.Create before anything downstream sees it.
func CompressGraphToFiles(ctx context.Context, g graph.SequentialLabeling, basePath string, opts Options) (CompStats, error) {
	graphFile, err := file.Create(ctx, basePath+".graph")
	if err != nil {
		return CompStats{}, errors.Wrap(err, "bvgraph: creating graph file")
	}
	offsetsFile, err := file.Create(ctx, basePath+".offsets")
	if err != nil {
		closeErr := grailerrors.Once{}
		closeErr.Set(graphFile.Close(ctx))
		if ce := closeErr.Err(); ce != nil {
			vlog.VI(1).Infof("bvgraph: closing graph file after offsets-create failure: %v", ce)
		}
		return CompStats{}, errors.Wrap(err, "bvgraph: creating offsets file")
	}

	stats, compErr := CompressGraph(g, graphFile.Writer(ctx), offsetsFile.Writer(ctx), opts)

	e := grailerrors.Once{}
	e.Set(graphFile.Close(ctx))
	e.Set(offsetsFile.Close(ctx))
	if compErr != nil {
		return stats, compErr
	}
	if err := e.Err(); err != nil {
		return stats, errors.Wrap(err, "bvgraph: closing graph/offsets files")
	}

	propsFile, err := file.Create(ctx, basePath+".properties")
	if err != nil {
		return stats, errors.Wrap(err, "bvgraph: creating properties file")
	}
	props := PropertiesFor(stats, opts, bitio.BigEndian)
	writeErr := WriteProperties(propsFile.Writer(ctx), props)
	closeErr := propsFile.Close(ctx)
	if writeErr != nil {
		return stats, errors.Wrap(writeErr, "bvgraph: writing properties file")
	}
	if closeErr != nil {
		return stats, errors.Wrap(closeErr, "bvgraph: closing properties file")
	}
	return stats, nil
}

// OpenSequentialGraphFiles reads basePath+".graph" and basePath+".properties"
// (for NumNodes and Options) and returns a ready SequentialGraph. It uses
// vcontext.Background when the caller has no context of its own to thread
// through, matching the pattern markduplicates.Main uses for its own
// top-level file.Open calls.
func OpenSequentialGraphFiles(basePath string) (*SequentialGraph, Properties, error) {
	ctx := vcontext.Background()

	propsFile, err := file.Open(ctx, basePath+".properties")
	if err != nil {
		return nil, Properties{}, errors.Wrap(err, "bvgraph: opening properties file")
	}
	props, err := ReadProperties(propsFile.Reader(ctx))
	closeErr := propsFile.Close(ctx)
	if err != nil {
		return nil, Properties{}, errors.Wrap(err, "bvgraph: reading properties file")
	}
	if closeErr != nil {
		return nil, Properties{}, errors.Wrap(closeErr, "bvgraph: closing properties file")
	}

	graphFile, err := file.Open(ctx, basePath+".graph")
	if err != nil {
		return nil, props, errors.Wrap(err, "bvgraph: opening graph file")
	}
	defer func() { _ = graphFile.Close(ctx) }()
	data, err := ioutil.ReadAll(graphFile.Reader(ctx))
	if err != nil {
		return nil, props, errors.Wrap(err, "bvgraph: reading graph file")
	}

	return NewSequentialGraph(data, props.NumNodes, props.Options), props, nil
}
