// Package storage reads and writes the files colgraph works with: CSV
// inputs, mapping documents and import reports. A location is either a
// local path or an s3://bucket/key URL; both are served through FileStore.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
)

// ErrInvalidPath is returned for paths that are empty or escape the store
// root.
var ErrInvalidPath = errors.New("storage: invalid path")

// FileStore is a minimal interface for file-oriented storage.
//
// Paths are forward-slash separated and relative to the store root.
// Implementations must be safe for concurrent use.
type FileStore interface {
	// Read opens the named file. A missing file is reported with an error
	// wrapping os.ErrNotExist. The caller closes the reader.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write opens the named file for writing. Nothing is visible under
	// path until Close returns nil; an existing file is replaced.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	// Exists reports whether the named file exists.
	Exists(ctx context.Context, path string) (bool, error)
}

// ReadFile reads the whole named file.
func ReadFile(ctx context.Context, fs FileStore, path string) ([]byte, error) {
	r, err := fs.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// WriteFile replaces the named file with data.
func WriteFile(ctx context.Context, fs FileStore, path string, data []byte) error {
	w, err := fs.Write(ctx, path)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Location is a parsed file location. Bucket is empty for local files.
type Location struct {
	Bucket string
	Path   string
}

// IsS3 reports whether the location names an S3 object.
func (l Location) IsS3() bool { return l.Bucket != "" }

func (l Location) String() string {
	if l.IsS3() {
		return "s3://" + l.Bucket + "/" + l.Path
	}
	return l.Path
}

// ParseLocation parses a local path or an s3://bucket/key URL.
func ParseLocation(uri string) (Location, error) {
	if !strings.HasPrefix(uri, "s3://") {
		if strings.TrimSpace(uri) == "" {
			return Location{}, fmt.Errorf("%w: empty location", ErrInvalidPath)
		}
		return Location{Path: uri}, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %w", ErrInvalidPath, err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" || strings.HasSuffix(key, "/") {
		return Location{}, fmt.Errorf("%w: %q must be s3://bucket/key", ErrInvalidPath, uri)
	}
	return Location{Bucket: u.Host, Path: key}, nil
}

// Open resolves uri into a store and the path of the file within it. S3
// clients are built from cfg.
func Open(uri string, cfg S3Config) (FileStore, string, error) {
	loc, err := ParseLocation(uri)
	if err != nil {
		return nil, "", err
	}
	if loc.IsS3() {
		return NewS3(NewS3Client(cfg), loc.Bucket, ""), loc.Path, nil
	}
	abs, err := filepath.Abs(loc.Path)
	if err != nil {
		return nil, "", err
	}
	store, err := NewLocal(filepath.Dir(abs))
	if err != nil {
		return nil, "", err
	}
	return store, filepath.Base(abs), nil
}
