package artifact

import (
	"bytes"
	"crypto/rand"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"testing/iotest"

	"github.com/matzehuels/cximage/pkg/errors"
)

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	data := []byte("\x89PNG\r\n\x1a\nhello")

	n, err := WriteFile(path, bytes.NewReader(data), Options{})
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if n != int64(len(data)) {
		t.Errorf("n = %d, want %d", n, len(data))
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("content = %q", got)
	}
	assertNoTemp(t, filepath.Dir(path))
}

func TestWriteFile_LargeChunked(t *testing.T) {
	data := make([]byte, 5<<20+123)
	if _, err := rand.Read(data); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		chunk int
		r     func() io.Reader
	}{
		{"default chunk", 0, func() io.Reader { return bytes.NewReader(data) }},
		{"tiny chunks", 7, func() io.Reader { return bytes.NewReader(data) }},
		{"one byte reads", 1024, func() io.Reader { return iotest.OneByteReader(bytes.NewReader(data[:64<<10])) }},
		{"half reads", 1024, func() io.Reader { return iotest.HalfReader(bytes.NewReader(data)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "big.png")
			var calls int
			_, err := WriteFile(path, tt.r(), Options{ChunkSize: tt.chunk, Progress: func(int64) { calls++ }})
			if err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			got, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			want := data
			if tt.name == "one byte reads" {
				want = data[:64<<10]
			}
			if !bytes.Equal(got, want) {
				t.Errorf("content differs: got %d bytes, want %d", len(got), len(want))
			}
			if calls < 2 {
				t.Errorf("progress called %d times, want many", calls)
			}
		})
	}
}

func TestWriteFile_ReadErrorLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")
	boom := stderrors.New("connection reset")
	r := io.MultiReader(bytes.NewReader(make([]byte, 4096)), iotest.ErrReader(boom))

	_, err := WriteFile(path, r, Options{})
	if !stderrors.Is(err, boom) {
		t.Fatalf("err = %v, want read error", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("target exists after failed write: %v", err)
	}
	assertNoTemp(t, dir)
}

func TestWriteFile_KeepsExistingOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := WriteFile(path, iotest.ErrReader(stderrors.New("eof early")), Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	got, _ := os.ReadFile(path)
	if string(got) != "old" {
		t.Errorf("existing file changed to %q", got)
	}
}

func TestWriteFile_CreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "out.png")
	if _, err := WriteFile(path, bytes.NewReader([]byte("x")), Options{}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error(err)
	}
}

func TestWriteFile_InvalidPath(t *testing.T) {
	_, err := WriteFile(t.TempDir()+"/", bytes.NewReader(nil), Options{})
	if !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("err = %v, want INVALID_PATH", err)
	}
}

func assertNoTemp(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".part" {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
}
