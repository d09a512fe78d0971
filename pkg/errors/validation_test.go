package errors

import (
	"strings"
	"testing"
)

func TestValidateJobID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"uuid", "0a1b2c3d-4e5f-6789-abcd-ef0123456789", false},
		{"simple", "job-123", false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 257), true},
		{"slash", "a/b", true},
		{"traversal", "..", true},
		{"backslash", `a\b`, true},
		{"query", "a?b", true},
		{"fragment", "a#b", true},
		{"space", "a b", true},
		{"newline", "a\nb", true},
		{"null byte", "a\x00b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJobID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateJobID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidJobID) {
				t.Errorf("expected INVALID_JOB_ID, got %v", GetCode(err))
			}
		})
	}
}

func TestValidateOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"relative", "out.png", false},
		{"nested", "renders/network.png", false},
		{"absolute", "/tmp/network.png", false},
		{"empty", "", true},
		{"directory", "renders/", true},
		{"control", "out\x07.png", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}
