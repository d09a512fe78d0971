// Package observability lets callers watch cximage at work without the
// libraries depending on a metrics or tracing backend.
//
// Three event families exist, each an interface with a no-op default:
//   - [PipelineHooks]: load, submit and fetch stages of an export
//   - [CacheHooks]: hits, misses and writes of the network cache
//   - [HTTPHooks]: every request to NDEx or the rendering service
//
// Register implementations once at startup, before any work starts:
//
//	observability.RegisterAll(observability.NewLogHooks(logger))
//
// Libraries fetch the current hooks at the call site:
//
//	start := time.Now()
//	observability.Pipeline().OnSubmitStart(ctx, algorithm)
//	job, err := jobs.Submit(ctx, doc, req)
//	observability.Pipeline().OnSubmitComplete(ctx, job.ID, time.Since(start), err)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// PipelineHooks receives events from the export pipeline. Each Complete
// event carries the stage's duration and error (nil on success).
type PipelineHooks interface {
	OnLoadStart(ctx context.Context, source string)
	OnLoadComplete(ctx context.Context, source string, nodeCount, edgeCount int, duration time.Duration, err error)

	OnSubmitStart(ctx context.Context, algorithm string)
	OnSubmitComplete(ctx context.Context, jobID string, duration time.Duration, err error)

	// The fetch stage covers waiting for the task and writing the image.
	OnFetchStart(ctx context.Context, jobID string)
	OnFetchComplete(ctx context.Context, jobID string, bytes int64, duration time.Duration, err error)
}

// CacheHooks receives events from the network cache. keyType names the kind
// of entry ("network").
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from outgoing HTTP calls. OnError is reported
// for transport failures only; any response, whatever its status, is an
// OnResponse.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopPipelineHooks ignores all pipeline events.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string)                                    {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, int, time.Duration, error) {}
func (NoopPipelineHooks) OnSubmitStart(context.Context, string)                                  {}
func (NoopPipelineHooks) OnSubmitComplete(context.Context, string, time.Duration, error)         {}
func (NoopPipelineHooks) OnFetchStart(context.Context, string)                                   {}
func (NoopPipelineHooks) OnFetchComplete(context.Context, string, int64, time.Duration, error)   {}

// NoopCacheHooks ignores all cache events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores all HTTP events.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// registry is swapped as a whole so readers never take a lock.
type registry struct {
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}

var current atomic.Pointer[registry]

func init() { Reset() }

func update(fn func(r *registry)) {
	for {
		old := current.Load()
		next := *old
		fn(&next)
		if current.CompareAndSwap(old, &next) {
			return
		}
	}
}

// SetPipelineHooks registers pipeline hooks. nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		update(func(r *registry) { r.pipeline = h })
	}
}

// SetCacheHooks registers cache hooks. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(r *registry) { r.cache = h })
	}
}

// SetHTTPHooks registers HTTP hooks. nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(r *registry) { r.http = h })
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return current.Load().pipeline }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return current.Load().cache }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return current.Load().http }

// Reset restores the no-op hooks. Tests that register hooks defer it.
func Reset() {
	current.Store(&registry{
		pipeline: NoopPipelineHooks{},
		cache:    NoopCacheHooks{},
		http:     NoopHTTPHooks{},
	})
}
