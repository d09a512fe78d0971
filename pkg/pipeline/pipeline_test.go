package pipeline

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cximage/pkg/cx"
	"github.com/matzehuels/cximage/pkg/errors"
	"github.com/matzehuels/cximage/pkg/jobclient"
	"github.com/matzehuels/cximage/pkg/jobclient/jobtest"
	"github.com/matzehuels/cximage/pkg/observability"
	"github.com/matzehuels/cximage/pkg/source"
)

const testCX = `[{"networkAttributes":[{"n":"name","v":"demo"}]},` +
	`{"nodes":[{"@id":1,"n":"A"},{"@id":2,"n":"B"},{"@id":3,"n":"C"}]},` +
	`{"edges":[{"@id":4,"s":1,"t":2},{"@id":5,"s":2,"t":3}]}]`

func setup(t *testing.T, opts ...jobtest.Option) (*jobtest.Server, *Runner, Options) {
	t.Helper()
	srv := jobtest.New(opts...)
	t.Cleanup(srv.Close)

	cfg := jobclient.DefaultConfig()
	cfg.BaseURL = srv.URL()
	jobs, err := jobclient.New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	in := filepath.Join(dir, "net.cx")
	if err := os.WriteFile(in, []byte(testCX), 0o644); err != nil {
		t.Fatal(err)
	}

	runner := NewRunner(jobs, log.New(io.Discard))
	return srv, runner, Options{
		Source:  source.File{Path: in},
		Output:  filepath.Join(dir, "out", "net.png"),
		Request: jobclient.DefaultRequest(),
	}
}

func TestExecute_Success(t *testing.T) {
	png := bytes.Repeat([]byte("\x89PNG-data"), 10000)
	srv, runner, opts := setup(t, jobtest.WithArtifact(png, "image/png"))

	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	got, err := os.ReadFile(opts.Output)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, png) {
		t.Errorf("output differs from artifact (%d vs %d bytes)", len(got), len(png))
	}
	if result.Bytes != int64(len(png)) || result.ContentType != "image/png" {
		t.Errorf("result = %+v", result)
	}
	if result.Stats.NodeCount != 3 || result.Stats.EdgeCount != 2 {
		t.Errorf("stats = %+v", result.Stats)
	}
	if result.NetworkName != "demo" || result.Job.State != jobclient.StateComplete {
		t.Errorf("result = %+v", result)
	}
	if len(srv.Calls()) != 2 {
		t.Errorf("calls = %d, want submit and fetch", len(srv.Calls()))
	}
}

func TestExecute_SubmitFailure(t *testing.T) {
	srv, runner, opts := setup(t, jobtest.WithSubmitResponse(http.StatusInternalServerError, "down"))

	_, err := runner.Execute(context.Background(), opts)
	if !errors.Is(err, errors.ErrCodeSubmission) {
		t.Fatalf("err = %v, want SUBMISSION_FAILED", err)
	}
	if n := srv.Count(http.MethodGet, "/*"); n != 0 {
		t.Errorf("fetches after failed submit = %d", n)
	}
	assertNoOutput(t, opts.Output)
}

func TestExecute_FetchFailure(t *testing.T) {
	_, runner, opts := setup(t, jobtest.WithRawResponse(http.StatusNotFound, "missing"))

	_, err := runner.Execute(context.Background(), opts)
	if !errors.Is(err, errors.ErrCodeFetch) {
		t.Fatalf("err = %v, want FETCH_FAILED", err)
	}
	assertNoOutput(t, opts.Output)
}

// brokenJobs accepts every job and serves an artifact whose body fails
// after the service answered 200.
type brokenJobs struct {
	job *jobclient.Job
}

func (b *brokenJobs) Submit(context.Context, *cx.Document, jobclient.Request) (*jobclient.Job, error) {
	b.job = &jobclient.Job{ID: "task-1", State: jobclient.StateSubmitted}
	return b.job, nil
}

func (b *brokenJobs) Fetch(_ context.Context, job *jobclient.Job) (*jobclient.Artifact, error) {
	job.State = jobclient.StateComplete
	return &jobclient.Artifact{
		Body:          io.NopCloser(io.MultiReader(strings.NewReader("\x89PNG"), failingReader{})),
		ContentType:   "image/png",
		ContentLength: -1,
	}, nil
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errBodyRead }

var errBodyRead = stderrors.New("connection reset")

func TestExecute_BodyFailureKeepsJobComplete(t *testing.T) {
	_, _, opts := setup(t)
	jobs := &brokenJobs{}
	runner := NewRunner(jobs, log.New(io.Discard))

	_, err := runner.Execute(context.Background(), opts)
	if !stderrors.Is(err, errBodyRead) {
		t.Fatalf("err = %v, want body read error", err)
	}
	if jobs.job.State != jobclient.StateComplete {
		t.Errorf("State = %s, want COMPLETE", jobs.job.State)
	}
	assertNoOutput(t, opts.Output)
}

func TestExecute_LoadFailure(t *testing.T) {
	srv, runner, opts := setup(t)
	opts.Source = source.File{Path: filepath.Join(t.TempDir(), "missing.cx")}

	_, err := runner.Execute(context.Background(), opts)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Fatalf("err = %v", err)
	}
	if len(srv.Calls()) != 0 {
		t.Error("service contacted despite load failure")
	}
}

func TestExecute_InvalidOptions(t *testing.T) {
	_, runner, opts := setup(t)

	bad := opts
	bad.Source = nil
	if _, err := runner.Execute(context.Background(), bad); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("nil source: err = %v", err)
	}

	bad = opts
	bad.Output = ""
	if _, err := runner.Execute(context.Background(), bad); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("empty output: err = %v", err)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	events []string
	bytes  int64
}

func (h *recordingHooks) OnLoadStart(context.Context, string) { h.events = append(h.events, "load") }
func (h *recordingHooks) OnSubmitStart(context.Context, string) {
	h.events = append(h.events, "submit")
}
func (h *recordingHooks) OnFetchStart(context.Context, string) { h.events = append(h.events, "fetch") }
func (h *recordingHooks) OnFetchComplete(_ context.Context, _ string, n int64, _ time.Duration, _ error) {
	h.bytes = n
}

func TestExecute_Hooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	_, runner, opts := setup(t, jobtest.WithArtifact([]byte("12345"), "image/png"))
	if _, err := runner.Execute(context.Background(), opts); err != nil {
		t.Fatal(err)
	}

	want := []string{"load", "submit", "fetch"}
	if len(hooks.events) != len(want) {
		t.Fatalf("events = %v, want %v", hooks.events, want)
	}
	for i := range want {
		if hooks.events[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, hooks.events[i], want[i])
		}
	}
	if hooks.bytes != 5 {
		t.Errorf("bytes = %d, want 5", hooks.bytes)
	}
}

func assertNoOutput(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("output %s exists after failure", path)
	}
}
