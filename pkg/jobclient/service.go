package jobclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"

	"github.com/matzehuels/cximage/pkg/buildinfo"
	"github.com/matzehuels/cximage/pkg/errors"
	"github.com/matzehuels/cximage/pkg/httputil"
)

// Task status values reported by the service.
const (
	StatusSubmitted  = "submitted"
	StatusProcessing = "processing"
	StatusComplete   = "complete"
	StatusFailed     = "failed"
)

// Status is a task's progress as reported by GET {base}/{id}/status.
type Status struct {
	ID        string `json:"id,omitempty"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	Progress  int    `json:"progress"`
	WallTime  int64  `json:"wallTime"`  // Milliseconds spent running
	StartTime int64  `json:"startTime"` // Unix milliseconds
}

// CustomParameter describes one parameter an algorithm accepts.
type CustomParameter struct {
	Name            string `json:"name"`
	DisplayName     string `json:"displayName"`
	Description     string `json:"description"`
	Type            string `json:"type"`
	DefaultValue    string `json:"defaultValue"`
	ValidationType  string `json:"validationType,omitempty"`
	ValidationHelp  string `json:"validationHelp,omitempty"`
	ValidationRegex string `json:"validationRegex,omitempty"`
}

// Algorithm describes a service-side algorithm.
type Algorithm struct {
	Name             string            `json:"name"`
	DisplayName      string            `json:"displayName"`
	Description      string            `json:"description"`
	Version          string            `json:"version"`
	InputDataFormat  string            `json:"inputDataFormat"`
	OutputDataFormat string            `json:"outputDataFormat"`
	CustomParameters []CustomParameter `json:"customParameters"`
}

// ServerStatus is the service's health report.
type ServerStatus struct {
	Status          string    `json:"status"`
	RestVersion     string    `json:"restVersion"`
	Load            []float64 `json:"load"`
	PercentDiskFull int       `json:"pcDiskFull"`
	Message         string    `json:"message,omitempty"`
	QueuedTasks     int       `json:"queuedTasks"`
	CompletedTasks  int       `json:"completedTasks"`
	CanceledTasks   int       `json:"canceledTasks"`
}

// Status returns the progress of task id. A task the service does not know
// (410 Gone or 404) yields NOT_FOUND.
func (c *Client) Status(ctx context.Context, id string) (*Status, error) {
	if err := errors.ValidateJobID(id); err != nil {
		return nil, err
	}
	var st Status
	if err := c.getJSON(ctx, "/"+id+"/status", "status of "+id, &st); err != nil {
		return nil, err
	}
	if st.ID == "" {
		st.ID = id
	}
	return &st, nil
}

// Delete removes a task and its result from the service. It requires a
// submitted job.
func (c *Client) Delete(ctx context.Context, job *Job) error {
	if job == nil || job.ID == "" || job.State == StateUnsubmitted {
		return errors.New(errors.ErrCodePrecondition, "cannot delete: job was not submitted")
	}
	resp, err := c.do(ctx, http.MethodDelete, "/"+job.ID)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return statusError(resp, "delete "+job.ID)
	}
	return nil
}

// Algorithms lists the algorithms the service offers, sorted by name.
func (c *Client) Algorithms(ctx context.Context) ([]Algorithm, error) {
	var body struct {
		Algorithms map[string]Algorithm `json:"algorithms"`
	}
	if err := c.getJSON(ctx, "/algorithms", "list algorithms", &body); err != nil {
		return nil, err
	}
	out := make([]Algorithm, 0, len(body.Algorithms))
	for name, a := range body.Algorithms {
		if a.Name == "" {
			a.Name = name
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ServerStatus returns the service's health report.
func (c *Client) ServerStatus(ctx context.Context) (*ServerStatus, error) {
	var st ServerStatus
	if err := c.getJSON(ctx, "/status", "server status", &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) do(ctx context.Context, method, path string) (*http.Response, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
	req, err := http.NewRequestWithContext(reqCtx, method, c.cfg.BaseURL+path, nil)
	if err != nil {
		cancel()
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	resp, err := httputil.Do(c.http, req)
	if err != nil {
		cancel()
		return nil, transportError(ctx, err, "%s %s", method, path)
	}
	resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, path, what string, v any) error {
	resp, err := c.do(ctx, http.MethodGet, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp, what)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(ctx, err, "read %s", what)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", what)
	}
	return nil
}

func statusError(resp *http.Response, what string) error {
	se := &errors.StatusError{StatusCode: resp.StatusCode, Body: httputil.ReadExcerpt(resp.Body)}
	switch resp.StatusCode {
	case http.StatusGone, http.StatusNotFound:
		return errors.Wrap(errors.ErrCodeNotFound, se, "%s", what)
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.Wrap(errors.ErrCodeUnauthorized, se, "%s", what)
	default:
		return errors.Wrap(errors.ErrCodeNetwork, se, "%s", what)
	}
}

type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
