package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"docscan/internal/model"
)

// fileStorage serves locations from the local filesystem.
//
// With useHost unset it handles file:///path, optionally rooted under root.
// With useHost set it handles content://authority/path, mapped to root/authority/path.
type fileStorage struct {
	root    string
	useHost bool
}

// NewFileStorage serves file:// locations. A non-empty root confines every path beneath it.
func NewFileStorage(root string) Storage {
	return &fileStorage{root: root}
}

// NewContentStorage serves content://authority/path locations from root/authority/path.
func NewContentStorage(root string) Storage {
	return &fileStorage{root: root, useHost: true}
}

func (f *fileStorage) path(loc model.Location) (string, error) {
	u, err := loc.URL()
	if err != nil {
		return "", err
	}
	if u.Opaque != "" {
		return "", fmt.Errorf("%w: opaque location %q", model.ErrMalformedLocation, loc)
	}
	rel := u.Path
	if f.useHost {
		if u.Host == "" {
			return "", fmt.Errorf("%w: missing authority in %q", model.ErrMalformedLocation, loc)
		}
		rel = "/" + u.Host + u.Path
	}
	if rel == "" || strings.HasSuffix(rel, "/") {
		return "", fmt.Errorf("%w: %q does not name a file", model.ErrMalformedLocation, loc)
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if f.root == "" {
		return clean, nil
	}
	// Clean on an absolute path drops any leading "..", keeping the result under root
	return filepath.Join(f.root, filepath.Clean(string(filepath.Separator)+clean)), nil
}

func (f *fileStorage) Open(_ context.Context, loc model.Location) (io.ReadCloser, error) {
	p, err := f.path(loc)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, loc)
		}
		return nil, err
	}
	return file, nil
}

func (f *fileStorage) Create(_ context.Context, loc model.Location) (io.WriteCloser, error) {
	p, err := f.path(loc)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create parent directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(p)+".*.part")
	if err != nil {
		return nil, err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, err
	}
	return &fileWriter{f: tmp, target: p}, nil
}

func (f *fileStorage) Exists(_ context.Context, loc model.Location) (bool, error) {
	p, err := f.path(loc)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// fileWriter writes to a temporary file beside the target and renames it into
// place on Close, so the target only ever holds complete content.
var _ Aborter = (*fileWriter)(nil)

type fileWriter struct {
	f      *os.File
	target string
}

func (w *fileWriter) Write(p []byte) (int, error) {
	return w.f.Write(p)
}

func (w *fileWriter) Close() error {
	if err := w.f.Close(); err != nil {
		os.Remove(w.f.Name())
		return err
	}
	if err := os.Rename(w.f.Name(), w.target); err != nil {
		os.Remove(w.f.Name())
		return err
	}
	return nil
}

// CloseWithError drops the temporary file and leaves the target untouched.
func (w *fileWriter) CloseWithError(error) error {
	w.f.Close()
	if err := os.Remove(w.f.Name()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
