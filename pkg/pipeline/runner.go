package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/cximage/pkg/artifact"
	"github.com/matzehuels/cximage/pkg/cx"
	"github.com/matzehuels/cximage/pkg/jobclient"
	"github.com/matzehuels/cximage/pkg/observability"
)

// JobService submits rendering jobs and fetches their artifacts.
// It is satisfied by *jobclient.Client.
type JobService interface {
	Submit(ctx context.Context, doc *cx.Document, req jobclient.Request) (*jobclient.Job, error)
	Fetch(ctx context.Context, job *jobclient.Job) (*jobclient.Artifact, error)
}

// Runner executes the load → submit → fetch pipeline.
//
// The Runner keeps no per-run state, so one Runner may serve concurrent runs
// with different options.
type Runner struct {
	Jobs   JobService
	Logger *log.Logger
}

// NewRunner creates a runner. If logger is nil, log.Default() is used.
func NewRunner(jobs JobService, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Jobs: jobs, Logger: logger}
}

// Execute runs the complete pipeline. On error no output file is created
// and an existing file at the output path is left untouched.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{RunID: uuid.NewString(), Output: opts.Output}
	logger := r.Logger.With("run", result.RunID[:8])
	hooks := observability.Pipeline()

	// Stage 1: Load
	desc := opts.Source.Describe()
	logger.Debug("loading network", "source", desc)
	hooks.OnLoadStart(ctx, desc)
	start := time.Now()
	doc, err := opts.Source.Load(ctx)
	result.Stats.LoadTime = time.Since(start)
	if err != nil {
		hooks.OnLoadComplete(ctx, desc, 0, 0, result.Stats.LoadTime, err)
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Stats.NodeCount, result.Stats.EdgeCount = doc.Counts()
	result.NetworkName = doc.Name()
	hooks.OnLoadComplete(ctx, desc, result.Stats.NodeCount, result.Stats.EdgeCount, result.Stats.LoadTime, nil)

	logger.Info("loaded network",
		"source", desc,
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"duration", result.Stats.LoadTime.Round(time.Millisecond))

	// Stage 2: Submit
	hooks.OnSubmitStart(ctx, opts.Request.Algorithm)
	start = time.Now()
	job, err := r.Jobs.Submit(ctx, doc, opts.Request)
	result.Stats.SubmitTime = time.Since(start)
	jobID := ""
	if job != nil {
		jobID = job.ID
	}
	hooks.OnSubmitComplete(ctx, jobID, result.Stats.SubmitTime, err)
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	result.Job = job

	logger.Info("submitted job", "id", job.ID, "algorithm", job.Algorithm)

	// Stage 3: Fetch
	hooks.OnFetchStart(ctx, job.ID)
	start = time.Now()
	n, ctype, err := r.fetch(ctx, job, opts)
	result.Stats.FetchTime = time.Since(start)
	hooks.OnFetchComplete(ctx, job.ID, n, result.Stats.FetchTime, err)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	result.Bytes, result.ContentType = n, ctype

	logger.Info("wrote image",
		"path", opts.Output,
		"bytes", n,
		"duration", result.Stats.FetchTime.Round(time.Millisecond))

	return result, nil
}

func (r *Runner) fetch(ctx context.Context, job *jobclient.Job, opts Options) (int64, string, error) {
	art, err := r.Jobs.Fetch(ctx, job)
	if err != nil {
		return 0, "", err
	}
	defer art.Body.Close()

	n, err := artifact.WriteFile(opts.Output, art.Body, artifact.Options{
		ChunkSize: opts.ChunkSize,
		Progress:  opts.Progress,
	})
	// The job stays COMPLETE; a failed write is reported through err only.
	return n, art.ContentType, err
}
