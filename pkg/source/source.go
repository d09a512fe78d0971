package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/cximage/pkg/cx"
	"github.com/matzehuels/cximage/pkg/errors"
)

// Source loads a CX document.
type Source interface {
	// Load reads and validates the document.
	Load(ctx context.Context) (*cx.Document, error)
	// Describe names the source for progress output.
	Describe() string
}

// NetworkFetcher downloads a network by UUID. It is satisfied by
// *ndex.Client.
type NetworkFetcher interface {
	FetchNetwork(ctx context.Context, id string, refresh bool) (*cx.Document, error)
}

// File is a CX document on disk.
type File struct {
	Path string
}

// Load implements Source.
func (f File) Load(ctx context.Context) (*cx.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return cx.ImportCX(f.Path)
}

// Describe implements Source.
func (f File) Describe() string { return f.Path }

// NDEx is a network stored on an NDEx server.
type NDEx struct {
	ID      string
	Fetcher NetworkFetcher
	Host    string // for Describe only
	Refresh bool   // bypass the download cache
}

// Load implements Source.
func (n NDEx) Load(ctx context.Context) (*cx.Document, error) {
	if n.Fetcher == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "no NDEx client configured")
	}
	return n.Fetcher.FetchNetwork(ctx, n.ID, n.Refresh)
}

// Describe implements Source.
func (n NDEx) Describe() string {
	if n.Host == "" {
		return "ndex:" + n.ID
	}
	return "ndex://" + n.Host + "/" + n.ID
}

// Options configure how Resolve builds remote sources.
type Options struct {
	Fetcher NetworkFetcher
	Host    string
	Refresh bool
}

// Resolve maps a command-line argument to a Source.
//
// An existing regular file is a [File]. Otherwise an argument that parses as a
// UUID is an [NDEx] network. Anything else yields INVALID_INPUT, or
// FILE_NOT_FOUND when the argument looks like a path.
func Resolve(arg string, opts Options) (Source, error) {
	if arg == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "network source cannot be empty")
	}

	info, err := os.Stat(arg)
	switch {
	case err == nil && info.Mode().IsRegular():
		return File{Path: arg}, nil
	case err == nil:
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s is not a regular file", arg)
	}

	if id, err := uuid.Parse(arg); err == nil {
		return NDEx{ID: id.String(), Fetcher: opts.Fetcher, Host: opts.Host, Refresh: opts.Refresh}, nil
	}

	if looksLikePath(arg) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "file not found: %s", arg)
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "%q is neither a CX file nor an NDEx network UUID", arg)
}

func looksLikePath(s string) bool {
	return strings.ContainsRune(s, filepath.Separator) || strings.ContainsRune(s, '/') || filepath.Ext(s) != ""
}
