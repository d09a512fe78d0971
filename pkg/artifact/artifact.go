// Package artifact writes rendered images to disk.
//
// [WriteFile] never leaves a partial image behind: the stream is copied into
// a temporary file in the destination directory, synced, and renamed over
// the target only after the last byte arrived. If anything fails the
// temporary file is removed and the target is left untouched.
package artifact

import (
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/cximage/pkg/errors"
)

// DefaultChunkSize is the size of each read from the artifact stream.
const DefaultChunkSize = 1024

// Options configure WriteFile.
type Options struct {
	ChunkSize int         // Bytes per read; 0 means DefaultChunkSize
	Perm      os.FileMode // Mode of the created file; 0 means 0644
	// Progress, if set, is called after each chunk with the total written so far.
	Progress func(written int64)
}

// WriteFile copies r to path and returns the number of bytes written.
// Missing parent directories are created.
//
// Errors reading r are returned unchanged (they carry the transport's
// classification); filesystem failures are IO_ERROR.
func WriteFile(path string, r io.Reader, opts Options) (n int64, err error) {
	if err := errors.ValidateOutputPath(path); err != nil {
		return 0, err
	}
	chunk := opts.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	perm := opts.Perm
	if perm == 0 {
		perm = 0o644
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, errors.Wrap(errors.ErrCodeIO, err, "create directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.part")
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeIO, err, "create temporary file in %s", dir)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	n, err = copyChunks(tmp, r, chunk, opts.Progress)
	if err != nil {
		return n, err
	}
	if err = tmp.Sync(); err != nil {
		return n, errors.Wrap(errors.ErrCodeIO, err, "sync %s", tmp.Name())
	}
	if err = tmp.Close(); err != nil {
		return n, errors.Wrap(errors.ErrCodeIO, err, "close %s", tmp.Name())
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return n, errors.Wrap(errors.ErrCodeIO, err, "chmod %s", tmp.Name())
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return n, errors.Wrap(errors.ErrCodeIO, err, "rename to %s", path)
	}
	return n, nil
}

func copyChunks(w io.Writer, r io.Reader, size int, progress func(int64)) (int64, error) {
	buf := make([]byte, size)
	var total int64
	for {
		nr, rerr := r.Read(buf)
		if nr > 0 {
			nw, werr := w.Write(buf[:nr])
			total += int64(nw)
			if werr != nil {
				return total, errors.Wrap(errors.ErrCodeIO, werr, "write artifact")
			}
			if nw != nr {
				return total, errors.Wrap(errors.ErrCodeIO, io.ErrShortWrite, "write artifact")
			}
			if progress != nil {
				progress(total)
			}
		}
		if rerr == io.EOF {
			return total, nil
		}
		if rerr != nil {
			return total, rerr
		}
	}
}
