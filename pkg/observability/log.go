package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports every pipeline, cache and HTTP event as a debug-level
// log line. The CLI installs it for --verbose:
//
//	h := observability.NewLogHooks(logger)
//	observability.SetPipelineHooks(h)
//	observability.SetCacheHooks(h)
//	observability.SetHTTPHooks(h)
type LogHooks struct {
	logger *log.Logger
}

var (
	_ PipelineHooks = LogHooks{}
	_ CacheHooks    = LogHooks{}
	_ HTTPHooks     = LogHooks{}
)

// NewLogHooks creates hooks that write to l.
func NewLogHooks(l *log.Logger) LogHooks {
	return LogHooks{logger: l.WithPrefix("trace")}
}

// RegisterAll installs h for every event category.
func RegisterAll(h interface {
	PipelineHooks
	CacheHooks
	HTTPHooks
}) {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func ms(d time.Duration) time.Duration { return d.Round(time.Millisecond) }

func (h LogHooks) OnLoadStart(_ context.Context, source string) {
	h.logger.Debug("load start", "source", source)
}

func (h LogHooks) OnLoadComplete(_ context.Context, source string, nodes, edges int, d time.Duration, err error) {
	h.logger.Debug("load done", "source", source, "nodes", nodes, "edges", edges, "duration", ms(d), "err", err)
}

func (h LogHooks) OnSubmitStart(_ context.Context, algorithm string) {
	h.logger.Debug("submit start", "algorithm", algorithm)
}

func (h LogHooks) OnSubmitComplete(_ context.Context, jobID string, d time.Duration, err error) {
	h.logger.Debug("submit done", "task", jobID, "duration", ms(d), "err", err)
}

func (h LogHooks) OnFetchStart(_ context.Context, jobID string) {
	h.logger.Debug("fetch start", "task", jobID)
}

func (h LogHooks) OnFetchComplete(_ context.Context, jobID string, n int64, d time.Duration, err error) {
	h.logger.Debug("fetch done", "task", jobID, "bytes", n, "duration", ms(d), "err", err)
}

func (h LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "path", path, "status", status, "duration", ms(d))
}

func (h LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}
