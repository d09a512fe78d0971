// Package jobtest provides an in-process fake of the rendering job service
// for tests.
//
// The fake implements the same routes as the real service under
// /cd/communitydetection/v1 and records every request it receives, so tests
// can assert on the exact sequence of calls:
//
//	srv := jobtest.New(jobtest.WithArtifact(png, "image/png"))
//	defer srv.Close()
//	client, _ := jobclient.New(jobclient.Config{BaseURL: srv.URL()})
package jobtest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// BasePath is the path the fake serves the API under.
const BasePath = "/cd/communitydetection/v1"

// DefaultJobID is the task id returned by a successful submission.
const DefaultJobID = "job-123"

// Call is one recorded request.
type Call struct {
	Method string
	Path   string // relative to BasePath, e.g. "/raw/job-123"
	Header http.Header
	Body   []byte
}

// Server is a fake rendering service.
type Server struct {
	srv *httptest.Server

	mu           sync.Mutex
	calls        []Call
	jobID        string
	submitStatus int
	submitBody   string
	rawStatus    int
	rawBody      string
	rawDelay     time.Duration
	artifact     []byte
	contentType  string
	statuses     []string
	taskMessage  string
	statusCode   int
	algorithms   string
}

// Option configures a Server.
type Option func(*Server)

// WithJobID sets the id returned on submission.
func WithJobID(id string) Option {
	return func(s *Server) { s.jobID = id }
}

// WithSubmitResponse makes submissions answer with status and body.
func WithSubmitResponse(status int, body string) Option {
	return func(s *Server) { s.submitStatus, s.submitBody = status, body }
}

// WithArtifact sets the bytes served by the raw result route.
func WithArtifact(data []byte, contentType string) Option {
	return func(s *Server) { s.artifact, s.contentType = data, contentType }
}

// WithRawResponse makes the raw result route answer with status and body
// instead of the artifact.
func WithRawResponse(status int, body string) Option {
	return func(s *Server) { s.rawStatus, s.rawBody = status, body }
}

// WithRawDelay delays the raw result route's response headers.
func WithRawDelay(d time.Duration) Option {
	return func(s *Server) { s.rawDelay = d }
}

// WithStatuses sets the sequence of task statuses reported by the status
// route. The last one repeats.
func WithStatuses(statuses ...string) Option {
	return func(s *Server) { s.statuses = statuses }
}

// WithTaskMessage sets the message reported alongside task statuses.
func WithTaskMessage(msg string) Option {
	return func(s *Server) { s.taskMessage = msg }
}

// WithStatusCode makes the task status and delete routes answer with code,
// e.g. 410 for an unknown task.
func WithStatusCode(code int) Option {
	return func(s *Server) { s.statusCode = code }
}

// New starts a fake service.
func New(opts ...Option) *Server {
	s := &Server{
		jobID:        DefaultJobID,
		submitStatus: http.StatusAccepted,
		rawStatus:    http.StatusOK,
		artifact:     []byte("\x89PNG\r\n\x1a\nfake"),
		contentType:  "image/png",
		statuses:     []string{"complete"},
		statusCode:   http.StatusOK,
		algorithms: `{"algorithms":{"cytojsimageexport":{"name":"cytojsimageexport",` +
			`"displayName":"Cytoscape.js image export","description":"Renders a CX network as PNG",` +
			`"version":"0.1.0","inputDataFormat":"CX2","outputDataFormat":"PNG",` +
			`"customParameters":[{"name":"--width","displayName":"Width","type":"value","defaultValue":"1024"}]}}}`,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Post(BasePath, s.submit)
	r.Get(BasePath+"/status", s.serverStatus)
	r.Get(BasePath+"/algorithms", s.listAlgorithms)
	r.Get(BasePath+"/raw/{id}", s.raw)
	r.Get(BasePath+"/{id}/status", s.taskStatus)
	r.Delete(BasePath+"/{id}", s.deleteTask)

	s.srv = httptest.NewServer(r)
	return s
}

// URL returns the service endpoint to configure clients with.
func (s *Server) URL() string { return s.srv.URL + BasePath }

// Close shuts the server down.
func (s *Server) Close() { s.srv.Close() }

// Calls returns a copy of the recorded requests in arrival order.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Count returns how many recorded requests match method and path. A path
// ending in "*" matches by prefix.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Method != method {
			continue
		}
		if p, ok := strings.CutSuffix(path, "*"); ok && strings.HasPrefix(c.Path, p) || c.Path == path {
			n++
		}
	}
	return n
}

// Submissions returns the bodies of all submit requests.
func (s *Server) Submissions() [][]byte {
	var out [][]byte
	for _, c := range s.Calls() {
		if c.Method == http.MethodPost {
			out = append(out, c.Body)
		}
	}
	return out
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.calls = append(s.calls, Call{
			Method: r.Method,
			Path:   strings.TrimPrefix(r.URL.Path, BasePath),
			Header: r.Header.Clone(),
			Body:   body,
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	status, body, id := s.submitStatus, s.submitBody, s.jobID
	s.mu.Unlock()

	if body == "" && status == http.StatusAccepted {
		body = fmt.Sprintf(`{"id":%q}`, id)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func (s *Server) raw(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	status, body, delay := s.rawStatus, s.rawBody, s.rawDelay
	artifact, ctype, id := s.artifact, s.contentType, s.jobID
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if chi.URLParam(r, "id") != id {
		http.Error(w, "no such task", http.StatusGone)
		return
	}
	if status != http.StatusOK {
		http.Error(w, body, status)
		return
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Length", fmt.Sprint(len(artifact)))
	w.Write(artifact)
}

func (s *Server) taskStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	code := s.statusCode
	st := s.statuses[0]
	if len(s.statuses) > 1 {
		s.statuses = s.statuses[1:]
	}
	msg := s.taskMessage
	s.mu.Unlock()

	if code != http.StatusOK {
		http.Error(w, "task not found", code)
		return
	}
	progress := 50
	if st == "complete" {
		progress = 100
	}
	writeJSON(w, map[string]any{
		"id":        chi.URLParam(r, "id"),
		"status":    st,
		"message":   msg,
		"progress":  progress,
		"wallTime":  1200,
		"startTime": 1700000000000,
	})
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	code := s.statusCode
	s.mu.Unlock()
	if code != http.StatusOK {
		http.Error(w, "task not found", code)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) listAlgorithms(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, s.algorithms)
}

func (s *Server) serverStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":         "ok",
		"restVersion":    "0.8.0",
		"load":           []float64{0.1, 0.2, 0.3},
		"pcDiskFull":     42,
		"queuedTasks":    0,
		"completedTasks": 7,
		"canceledTasks":  0,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
