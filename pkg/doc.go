// Package pkg provides the libraries behind the cximage command.
//
// # Overview
//
// cximage turns a CX network into an image by handing it to a remote
// rendering service. The pkg directory is organized by concern:
//
//  1. [cx] - CX documents (parsing, aspects, counts)
//  2. [source] - Where a network comes from (file or NDEx UUID)
//  3. [integrations] - HTTP clients for external APIs (NDEx)
//  4. [jobclient] - The rendering service's submit/poll/fetch protocol
//  5. [artifact] - Atomic, chunked writes of fetched images
//  6. [pipeline] - Orchestration (load → submit → fetch)
//
// Supporting packages: [cache] (file, Redis and null backends for downloaded
// networks), [httputil] (HTTP client and retry policy), [errors] (coded
// errors), [observability] (hooks), [buildinfo] (version metadata) and
// [render] (local Graphviz previews).
//
// # Architecture
//
// The data flow of one export:
//
//	CX file / NDEx UUID
//	         ↓
//	    [source] package (load and parse)
//	         ↓
//	    [jobclient] Submit (POST network, receive task id)
//	         ↓
//	    [jobclient] Fetch (GET /raw/<id>)
//	         ↓
//	    [artifact] WriteFile (temp file, chunked copy, rename)
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/cximage/pkg/jobclient"
//	    "github.com/matzehuels/cximage/pkg/pipeline"
//	    "github.com/matzehuels/cximage/pkg/source"
//	)
//
//	jobs, err := jobclient.New(jobclient.DefaultConfig())
//	src, err := source.Resolve("network.cx", source.Options{})
//	result, err := pipeline.NewRunner(jobs, logger).Execute(ctx, pipeline.Options{
//	    Source:  src,
//	    Output:  "network.png",
//	    Request: jobclient.DefaultRequest(),
//	})
package pkg
