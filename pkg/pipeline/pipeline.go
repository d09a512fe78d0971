// Package pipeline runs the export pipeline of cximage.
//
// The pipeline consists of three stages:
//
//  1. Load: read the CX network from a file or download it from NDEx
//  2. Submit: post the network to the rendering service
//  3. Fetch: stream the rendered image into the output file
//
// # Usage
//
//	runner := pipeline.NewRunner(jobs, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:  src,
//	    Output:  "network.png",
//	    Request: jobclient.DefaultRequest(),
//	})
//
// Each stage reports to the registered [observability.PipelineHooks].
// No output file exists unless every stage succeeded.
package pipeline

import (
	"time"

	"github.com/matzehuels/cximage/pkg/artifact"
	"github.com/matzehuels/cximage/pkg/errors"
	"github.com/matzehuels/cximage/pkg/jobclient"
	"github.com/matzehuels/cximage/pkg/source"
)

// Options configure one pipeline run.
type Options struct {
	Source  source.Source     // Where the network comes from
	Output  string            // Path of the image to write
	Request jobclient.Request // Algorithm and custom parameters

	// ChunkSize is the read size used while writing the artifact.
	// 0 selects artifact.DefaultChunkSize.
	ChunkSize int

	// Progress, if set, receives the running byte count while the
	// artifact is written.
	Progress func(written int64)
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Source == nil {
		return errors.New(errors.ErrCodeInvalidInput, "no network source")
	}
	if err := errors.ValidateOutputPath(o.Output); err != nil {
		return err
	}
	if o.Request.Algorithm == "" {
		o.Request.Algorithm = jobclient.DefaultAlgorithm
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = artifact.DefaultChunkSize
	}
	return nil
}

// Stats holds counts and per-stage timings of a run.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	LoadTime   time.Duration
	SubmitTime time.Duration
	FetchTime  time.Duration
}

// Total is the summed duration of all stages.
func (s Stats) Total() time.Duration { return s.LoadTime + s.SubmitTime + s.FetchTime }

// Result describes a successful run.
type Result struct {
	RunID       string
	NetworkName string
	Job         *jobclient.Job
	Output      string
	Bytes       int64
	ContentType string
	Stats       Stats
}
