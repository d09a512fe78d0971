package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var errTransient = errors.New("transient")

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(errTransient)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if err.Error() != errTransient.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if !errors.Is(err, errTransient) {
		t.Error("wrapped error should unwrap to the cause")
	}
	if IsRetryable(errTransient) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("success first try", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, 3, time.Millisecond, func() error {
			calls++
			return nil
		})
		if err != nil || calls != 1 {
			t.Errorf("err = %v, calls = %d; want nil, 1", err, calls)
		}
	})

	t.Run("non-retryable stops", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, 3, time.Millisecond, func() error {
			calls++
			return errTransient
		})
		if err != errTransient || calls != 1 {
			t.Errorf("err = %v, calls = %d; want errTransient, 1", err, calls)
		}
	})

	t.Run("retryable retries", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, 3, time.Millisecond, func() error {
			calls++
			if calls < 3 {
				return Retryable(errTransient)
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Errorf("err = %v, calls = %d; want nil, 3", err, calls)
		}
	})

	t.Run("exhausted", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, 2, time.Millisecond, func() error {
			calls++
			return Retryable(errTransient)
		})
		if !errors.Is(err, errTransient) || calls != 2 {
			t.Errorf("err = %v, calls = %d; want errTransient, 2", err, calls)
		}
	})

	t.Run("zero attempts runs once", func(t *testing.T) {
		calls := 0
		_ = Retry(ctx, 0, time.Millisecond, func() error {
			calls++
			return Retryable(errTransient)
		})
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Second, func() error {
		return Retryable(errTransient)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

func TestPolicyMaxDelay(t *testing.T) {
	p := Policy{Attempts: 5, Delay: 10 * time.Millisecond, MaxDelay: 10 * time.Millisecond}

	start := time.Now()
	_ = p.Do(context.Background(), func() error { return Retryable(errTransient) })
	elapsed := time.Since(start)

	// Four waits capped at 10ms each; unbounded doubling would take 150ms.
	if elapsed >= 120*time.Millisecond {
		t.Errorf("elapsed %v, MaxDelay not applied", elapsed)
	}
}

func TestDo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/x", nil)
	resp, err := Do(NewClient(time.Second), req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("status = %d, want 418", resp.StatusCode)
	}
}

func TestReadExcerpt(t *testing.T) {
	if got := ReadExcerpt(strings.NewReader("  oops \n")); got != "oops" {
		t.Errorf("ReadExcerpt = %q, want %q", got, "oops")
	}
	long := strings.Repeat("x", maxExcerpt*2)
	if got := ReadExcerpt(strings.NewReader(long)); len(got) != maxExcerpt {
		t.Errorf("len = %d, want %d", len(got), maxExcerpt)
	}
}
