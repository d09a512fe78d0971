package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeNetwork, cause, "failed to fetch")

	if err.Code != ErrCodeNetwork {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeNetwork)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeInvalidInput,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeNetwork,
			expected: false,
		},
		{
			name:     "outer code",
			err:      Wrap(ErrCodeFetch, New(ErrCodeTimeout, "inner"), "outer"),
			code:     ErrCodeFetch,
			expected: true,
		},
		{
			name:     "inner code",
			err:      Wrap(ErrCodeFetch, New(ErrCodeTimeout, "inner"), "outer"),
			code:     ErrCodeTimeout,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("run: %w", New(ErrCodeSubmission, "rejected")),
			code:     ErrCodeSubmission,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeUsage, "test"),
			expected: ErrCodeUsage,
		},
		{
			name:     "outermost wins",
			err:      Wrap(ErrCodeSubmission, New(ErrCodeNetwork, "x"), "y"),
			expected: ErrCodeSubmission,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "with status cause",
			err:      Wrap(ErrCodeSubmission, &StatusError{StatusCode: 500, Body: "boom"}, "submit job"),
			expected: "submit job: status 500: boom",
		},
		{
			name:     "nested",
			err:      Wrap(ErrCodeFetch, New(ErrCodeTimeout, "gave up after 3 polls"), "fetch job-1"),
			expected: "fetch job-1: gave up after 3 polls",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStatusError(t *testing.T) {
	t.Run("with body", func(t *testing.T) {
		err := &StatusError{StatusCode: 404, Body: "no such task"}
		expected := "status 404: no such task"
		if err.Error() != expected {
			t.Errorf("Error() = %v, want %v", err.Error(), expected)
		}
	})

	t.Run("without body", func(t *testing.T) {
		err := &StatusError{StatusCode: 410}
		if err.Error() != "status 410" {
			t.Errorf("Error() = %v, want %v", err.Error(), "status 410")
		}
	})

	t.Run("status code through chain", func(t *testing.T) {
		err := fmt.Errorf("run: %w", Wrap(ErrCodeFetch, &StatusError{StatusCode: 404}, "fetch"))
		if got := StatusCode(err); got != 404 {
			t.Errorf("StatusCode() = %d, want 404", got)
		}
		if got := StatusCode(errors.New("plain")); got != 0 {
			t.Errorf("StatusCode(plain) = %d, want 0", got)
		}
	})
}
