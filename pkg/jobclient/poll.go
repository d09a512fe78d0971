package jobclient

import (
	"context"
	"time"

	"github.com/matzehuels/cximage/pkg/errors"
	"github.com/matzehuels/cximage/pkg/httputil"
)

// PollMode selects how Fetch waits for a task.
type PollMode string

const (
	// PollSingle fetches once, immediately. A task that is not finished yet
	// makes the fetch fail.
	PollSingle PollMode = "single"
	// PollBackoff checks the task status with a doubling interval before
	// fetching.
	PollBackoff PollMode = "backoff"
)

// PollPolicy configures waiting for a task to finish.
type PollPolicy struct {
	Mode        PollMode
	Attempts    int           // Status checks before giving up
	Interval    time.Duration // Wait after the first check
	MaxInterval time.Duration // Upper bound for the doubled interval
}

// DefaultPollPolicy fetches once without waiting.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{Mode: PollSingle, Attempts: 10, Interval: time.Second, MaxInterval: 30 * time.Second}
}

// ParsePollMode parses "single" or "backoff". The empty string is single.
func ParsePollMode(s string) (PollMode, error) {
	switch PollMode(s) {
	case "", PollSingle:
		return PollSingle, nil
	case PollBackoff:
		return PollBackoff, nil
	}
	return "", errors.New(errors.ErrCodeInvalidConfig, "unknown poll mode %q (want single or backoff)", s)
}

func (p *PollPolicy) validate() error {
	mode, err := ParsePollMode(string(p.Mode))
	if err != nil {
		return err
	}
	p.Mode = mode
	if mode == PollSingle {
		return nil
	}
	if p.Attempts < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "poll attempts must be at least 1, got %d", p.Attempts)
	}
	if p.Interval <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "poll interval must be positive, got %s", p.Interval)
	}
	if p.MaxInterval > 0 && p.MaxInterval < p.Interval {
		p.MaxInterval = p.Interval
	}
	return nil
}

// Wait polls the status of a submitted job until the task is complete,
// failed, or the policy's attempts are used up. It does not fetch the
// artifact. Wait honours the configured attempts and intervals even when
// the client's mode is PollSingle.
//
// A failed task or an exhausted policy marks the job FAILED and returns
// FETCH_FAILED; exhaustion additionally carries TIMEOUT.
func (c *Client) Wait(ctx context.Context, job *Job) (*Status, error) {
	if err := requireSubmitted(job, "wait for"); err != nil {
		return nil, err
	}

	p := c.cfg.Poll
	policy := httputil.Policy{Attempts: max(p.Attempts, 1), Delay: p.Interval, MaxDelay: p.MaxInterval}

	var last *Status
	checks := 0
	err := policy.Do(ctx, func() error {
		checks++
		st, err := c.Status(ctx, job.ID)
		if err != nil {
			return err
		}
		last = st
		c.logger.Debug("task status", "id", job.ID, "status", st.Status, "progress", st.Progress)
		switch st.Status {
		case StatusComplete:
			return nil
		case StatusFailed:
			return errors.New(errors.ErrCodeFetch, "task failed: %s", st.Message)
		default:
			return httputil.Retryable(errors.New(errors.ErrCodeTimeout,
				"task still %s after %d status checks", st.Status, checks))
		}
	})
	if err != nil {
		if ctx.Err() != nil {
			return last, ctx.Err()
		}
		job.State = StateFailed
		return last, errors.Wrap(errors.ErrCodeFetch, err, "wait for %s", job.ID)
	}
	return last, nil
}
