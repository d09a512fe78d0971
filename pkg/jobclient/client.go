package jobclient

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cximage/pkg/buildinfo"
	"github.com/matzehuels/cximage/pkg/cx"
	"github.com/matzehuels/cximage/pkg/errors"
	"github.com/matzehuels/cximage/pkg/httputil"
)

// Client submits rendering jobs and retrieves their artifacts.
// A Client holds no per-job state and is safe for concurrent use.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *log.Logger
}

// New creates a Client. It returns INVALID_CONFIG if the base URL is not an
// absolute http(s) URL or the poll policy is inconsistent.
func New(cfg Config) (*Client, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Client{cfg: cfg, http: cfg.HTTPClient, logger: cfg.Logger}, nil
}

// BaseURL returns the service endpoint.
func (c *Client) BaseURL() string { return c.cfg.BaseURL }

// Poll returns the client's poll policy.
func (c *Client) Poll() PollPolicy { return c.cfg.Poll }

type submitBody struct {
	Algorithm        string            `json:"algorithm"`
	CustomParameters map[string]string `json:"customParameters"`
	Data             *cx.Document      `json:"data"`
}

type submitResponse struct {
	ID string `json:"id"`
}

// Submit posts doc to the service. The returned Job is never nil: on success
// it is SUBMITTED and carries the task id, otherwise it is FAILED.
// Submission is never retried.
func (c *Client) Submit(ctx context.Context, doc *cx.Document, req Request) (*Job, error) {
	job := &Job{Algorithm: req.algorithm(), State: StateUnsubmitted}
	fail := func(err error) (*Job, error) {
		job.State = StateFailed
		return job, err
	}

	if doc == nil {
		return fail(errors.New(errors.ErrCodeInvalidInput, "no network to submit"))
	}
	params, err := req.CustomParameters()
	if err != nil {
		return fail(err)
	}
	job.Parameters = params

	payload, err := json.Marshal(submitBody{Algorithm: job.Algorithm, CustomParameters: params, Data: doc})
	if err != nil {
		return fail(errors.Wrap(errors.ErrCodeInternal, err, "encode request"))
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.SubmitTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return fail(errors.Wrap(errors.ErrCodeInvalidConfig, err, "build submit request"))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", buildinfo.UserAgent())

	c.logger.Debug("submitting job", "url", c.cfg.BaseURL, "algorithm", job.Algorithm, "bytes", len(payload))
	resp, err := httputil.Do(c.http, httpReq)
	if err != nil {
		return fail(transportError(ctx, err, "submit to %s", c.cfg.BaseURL))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		se := &errors.StatusError{StatusCode: resp.StatusCode, Body: httputil.ReadExcerpt(resp.Body)}
		return fail(errors.Wrap(errors.ErrCodeSubmission, se, "submit job"))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(transportError(ctx, err, "read submit response"))
	}
	var sr submitResponse
	if err := json.Unmarshal(body, &sr); err != nil || sr.ID == "" {
		se := &errors.StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
		return fail(errors.Wrap(errors.ErrCodeSubmission, se, "submit job: response has no task id"))
	}
	if err := errors.ValidateJobID(sr.ID); err != nil {
		return fail(errors.Wrap(errors.ErrCodeSubmission, err, "submit job"))
	}

	job.ID = sr.ID
	job.State = StateSubmitted
	job.SubmittedAt = time.Now()
	c.logger.Debug("job accepted", "id", job.ID)
	return job, nil
}

// Artifact is a rendered image being streamed from the service.
// The caller must Close Body.
type Artifact struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64 // -1 if unknown
}

// Fetch retrieves the artifact of a submitted job, first waiting for the
// task according to the client's poll policy. On success the job is
// COMPLETE; on an unexpected status or a failed task it is FAILED.
//
// The fetch timeout bounds the wait for the response headers and every
// subsequent read of the body, so a large image that keeps arriving is not
// cut off.
func (c *Client) Fetch(ctx context.Context, job *Job) (*Artifact, error) {
	if err := requireSubmitted(job, "fetch"); err != nil {
		return nil, err
	}

	if c.cfg.Poll.Mode == PollBackoff {
		if _, err := c.Wait(ctx, job); err != nil {
			return nil, err
		}
	}

	url := c.cfg.BaseURL + "/raw/" + job.ID
	reqCtx, cancel := context.WithCancel(ctx)
	idle := newIdleTimer(c.cfg.FetchTimeout, cancel)

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		idle.stop()
		cancel()
		return nil, errors.Wrap(errors.ErrCodeInvalidJobID, err, "build fetch request")
	}

	httpReq.Header.Set("User-Agent", buildinfo.UserAgent())

	c.logger.Debug("fetching artifact", "url", url)
	resp, err := httputil.Do(c.http, httpReq)
	if err != nil {
		idle.stop()
		cancel()
		job.State = StateFailed
		if idle.fired() {
			err = context.DeadlineExceeded
		}
		return nil, transportError(ctx, err, "fetch %s", job.ID)
	}

	if resp.StatusCode != http.StatusOK {
		se := &errors.StatusError{StatusCode: resp.StatusCode, Body: httputil.ReadExcerpt(resp.Body)}
		resp.Body.Close()
		idle.stop()
		cancel()
		job.State = StateFailed
		return nil, errors.Wrap(errors.ErrCodeFetch, se, "fetch %s", job.ID)
	}

	job.State = StateComplete
	idle.reset()
	return &Artifact{
		Body:          &idleBody{rc: resp.Body, idle: idle, cancel: cancel, parent: ctx},
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
	}, nil
}

func requireSubmitted(job *Job, op string) error {
	if job == nil || job.ID == "" || job.State == StateUnsubmitted {
		return errors.New(errors.ErrCodePrecondition, "cannot %s: job was not submitted", op)
	}
	if job.State == StateFailed {
		return errors.New(errors.ErrCodePrecondition, "cannot %s: job %s has failed", op, job.ID)
	}
	return nil
}

// transportError classifies a failed exchange. A cancelled parent context is
// returned as is; deadlines become TIMEOUT and everything else NETWORK_ERROR.
func transportError(parent context.Context, err error, format string, args ...any) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	var ne net.Error
	if stderrors.Is(err, context.DeadlineExceeded) || (stderrors.As(err, &ne) && ne.Timeout()) {
		return errors.Wrap(errors.ErrCodeTimeout, err, format, args...)
	}
	return errors.Wrap(errors.ErrCodeNetwork, err, format, args...)
}

// idleTimer cancels a request when no progress is made for d.
type idleTimer struct {
	d    time.Duration
	t    *time.Timer
	fire atomic.Bool
	done atomic.Bool
}

func newIdleTimer(d time.Duration, cancel context.CancelFunc) *idleTimer {
	it := &idleTimer{d: d}
	it.t = time.AfterFunc(d, func() {
		if !it.done.Load() {
			it.fire.Store(true)
			cancel()
		}
	})
	return it
}

func (it *idleTimer) reset() {
	if !it.done.Load() {
		it.t.Reset(it.d)
	}
}

func (it *idleTimer) stop() {
	it.done.Store(true)
	it.t.Stop()
}

func (it *idleTimer) fired() bool { return it.fire.Load() }

type idleBody struct {
	rc     io.ReadCloser
	idle   *idleTimer
	cancel context.CancelFunc
	parent context.Context
}

func (b *idleBody) Read(p []byte) (int, error) {
	n, err := b.rc.Read(p)
	if n > 0 {
		b.idle.reset()
	}
	if err != nil && err != io.EOF {
		if b.idle.fired() {
			err = context.DeadlineExceeded
		}
		return n, transportError(b.parent, err, "read artifact")
	}
	return n, err
}

func (b *idleBody) Close() error {
	b.idle.stop()
	err := b.rc.Close()
	b.cancel()
	return err
}
