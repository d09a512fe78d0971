package jobclient

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/cximage/pkg/errors"
)

// State is the lifecycle state of a Job.
type State int

const (
	StateUnsubmitted State = iota
	StateSubmitted
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnsubmitted:
		return "UNSUBMITTED"
	case StateSubmitted:
		return "SUBMITTED"
	case StateComplete:
		return "COMPLETE"
	case StateFailed:
		return "FAILED"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool { return s == StateComplete || s == StateFailed }

// Job is one rendering task. ID is empty until the service accepts the
// submission.
type Job struct {
	ID          string
	Algorithm   string
	Parameters  map[string]string
	State       State
	SubmittedAt time.Time
}

// Resume returns a Job for a task submitted earlier, for example by another
// process. The id must be a valid task identifier.
func Resume(id string) (*Job, error) {
	if err := errors.ValidateJobID(id); err != nil {
		return nil, err
	}
	return &Job{ID: id, State: StateSubmitted}, nil
}

// Request describes what to render.
type Request struct {
	Algorithm string            // Defaults to DefaultAlgorithm
	Width     int               // Sent as --width; 0 omits it
	Height    int               // Sent as --height; 0 omits it
	Params    map[string]string // Extra custom parameters
}

// DefaultRequest renders with the default algorithm at 2048x2048.
func DefaultRequest() Request {
	return Request{Algorithm: DefaultAlgorithm, Width: DefaultWidth, Height: DefaultHeight}
}

// CustomParameters returns the customParameters object sent to the service.
// Keys are given a "--" prefix when they lack one. Width and Height override
// any --width or --height in Params.
func (r Request) CustomParameters() (map[string]string, error) {
	if r.Width < 0 || r.Height < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "image size must be positive, got %dx%d", r.Width, r.Height)
	}

	out := make(map[string]string, len(r.Params)+2)
	for k, v := range r.Params {
		k = strings.TrimSpace(k)
		if k == "" || k == "--" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "empty custom parameter name")
		}
		if !strings.HasPrefix(k, "--") {
			k = "--" + k
		}
		out[k] = v
	}
	if r.Width > 0 {
		out["--width"] = strconv.Itoa(r.Width)
	}
	if r.Height > 0 {
		out["--height"] = strconv.Itoa(r.Height)
	}
	return out, nil
}

func (r Request) algorithm() string {
	if r.Algorithm == "" {
		return DefaultAlgorithm
	}
	return r.Algorithm
}

// ParseParams parses "key=value" pairs as given on the command line.
func ParseParams(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "custom parameter %q is not key=value", p)
		}
		out[strings.TrimSpace(k)] = v
	}
	return out, nil
}

// SortedKeys returns the keys of m in order, for stable log output.
func SortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
