package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"docscan/internal/model"
)

// Package storage resolves document locations to byte streams.
// The bytes behind a location are owned by the backend; callers only hold the reference.

var (
	// ErrNotFound is returned when a location points at nothing.
	ErrNotFound = errors.New("location not found")
	// ErrUnsupportedScheme is returned when no backend is registered for a location's scheme.
	ErrUnsupportedScheme = errors.New("unsupported location scheme")
)

// Storage opens and creates the resources behind locations.
// Methods use context and streaming readers/writers.
type Storage interface {
	// Open returns a reader over the full content at loc.
	Open(ctx context.Context, loc model.Location) (io.ReadCloser, error)
	// Create returns a writer that replaces the content at loc. The content is
	// only guaranteed to be stored once Close returns nil; Abort leaves loc untouched.
	Create(ctx context.Context, loc model.Location) (io.WriteCloser, error)
	// Exists reports whether loc currently resolves to content.
	Exists(ctx context.Context, loc model.Location) (bool, error)
}

// Aborter is implemented by writers returned from Create that can discard what
// was written. CloseWithError releases the writer without storing any content.
type Aborter interface {
	CloseWithError(err error) error
}

// Abort discards a partially written w. Writers that cannot discard are only closed.
func Abort(w io.WriteCloser, cause error) error {
	if a, ok := w.(Aborter); ok {
		return a.CloseWithError(cause)
	}
	return w.Close()
}

// Resolver dispatches to a Storage per URI scheme.
// It is safe for concurrent use by multiple goroutines.
type Resolver struct {
	mu       sync.RWMutex
	backends map[string]Storage
}

var _ Storage = (*Resolver)(nil)

// NewResolver creates an empty Resolver.
func NewResolver() *Resolver {
	return &Resolver{backends: make(map[string]Storage)}
}

// Register serves locations with the given scheme from s, replacing any previous backend.
func (r *Resolver) Register(scheme string, s Storage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[strings.ToLower(scheme)] = s
}

// Schemes lists the registered schemes.
func (r *Resolver) Schemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.backends))
	for s := range r.backends {
		out = append(out, s)
	}
	return out
}

func (r *Resolver) backend(loc model.Location) (Storage, error) {
	scheme := loc.Scheme()
	r.mu.RLock()
	s, ok := r.backends[scheme]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
	return s, nil
}

func (r *Resolver) Open(ctx context.Context, loc model.Location) (io.ReadCloser, error) {
	s, err := r.backend(loc)
	if err != nil {
		return nil, err
	}
	return s.Open(ctx, loc)
}

func (r *Resolver) Create(ctx context.Context, loc model.Location) (io.WriteCloser, error) {
	s, err := r.backend(loc)
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, loc)
}

func (r *Resolver) Exists(ctx context.Context, loc model.Location) (bool, error) {
	s, err := r.backend(loc)
	if err != nil {
		return false, err
	}
	return s.Exists(ctx, loc)
}
