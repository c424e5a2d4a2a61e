package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"docscan/internal/model"
	"docscan/internal/picker"
	"docscan/internal/scanner"
	"docscan/internal/storage"
)

var (
	ErrNoPendingScan          = errors.New("no pending scan")
	ErrDestinationNotChosen   = errors.New("destination not chosen")
	ErrSourceUnavailable      = errors.New("scanned document cannot be opened")
	ErrDestinationUnavailable = errors.New("destination cannot be opened")
	ErrCopyFailed             = errors.New("copy to destination failed")
	ErrPersistFailed          = errors.New("document record not saved")
	ErrNotFound               = errors.New("document not found")
	ErrLocationUnavailable    = errors.New("document location unavailable")
)

var tracer = otel.Tracer("docscan/internal/service")

// DocumentListResult is the service-level DTO for the document list.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// DocumentStore is the live persistence the coordinator writes to and observes.
type DocumentStore interface {
	InsertOrUpdate(ctx context.Context, doc model.Document) (*model.Document, error)
	ObserveAll(ctx context.Context) (<-chan []model.Document, error)
}

// DocumentCoordinator drives the scan → copy → record flow and mirrors the stored documents.
type DocumentCoordinator interface {
	// Start subscribes to the store. The first snapshot is applied before Start returns;
	// later ones replace the list as they arrive, until ctx is done.
	Start(ctx context.Context) error

	// RecordScan remembers loc as the scan to save next, replacing any earlier one.
	RecordScan(loc model.Location)

	// PendingScan returns the scan waiting to be saved.
	PendingScan() (model.Location, bool)

	// Documents returns a copy of the latest snapshot.
	Documents() []model.Document

	// Get looks a document up in the latest snapshot.
	Get(id int64) (*model.Document, error)

	// Observe streams store snapshots until ctx is done.
	Observe(ctx context.Context) (<-chan []model.Document, error)

	// Scan runs the scanner with the default options and records the resulting PDF.
	Scan(ctx context.Context) (*scanner.Result, error)

	// SaveDocument copies the pending scan to destination and records it.
	// The document list is not touched here; the new record arrives through the subscription.
	SaveDocument(ctx context.Context, destination model.Location) (*model.Document, error)

	// SaveToPicked asks the picker for a destination, then saves there.
	SaveToPicked(ctx context.Context) (*model.Document, error)

	// Open returns the content of a stored document.
	Open(ctx context.Context, id int64) (io.ReadCloser, *model.Document, error)

	// Available reports whether the document's location still resolves. Display only.
	Available(ctx context.Context, doc model.Document) bool
}

// Option configures the coordinator.
type Option func(*documentCoordinator)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *documentCoordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records scan and save outcomes.
func WithMetrics(m *Metrics) Option {
	return func(c *documentCoordinator) { c.metrics = m }
}

// WithClock replaces time.Now, e.g. to stamp names in a configured time zone.
func WithClock(now func() time.Time) Option {
	return func(c *documentCoordinator) {
		if now != nil {
			c.now = now
		}
	}
}

type documentCoordinator struct {
	store   DocumentStore
	objects storage.Storage
	scanner scanner.Scanner
	picker  picker.Picker
	logger  *zap.Logger
	metrics *Metrics
	now     func() time.Time

	mu        sync.RWMutex
	pending   model.Location
	documents []model.Document
	started   bool
}

// NewDocumentCoordinator constructs a new DocumentCoordinator.
func NewDocumentCoordinator(store DocumentStore, objects storage.Storage, scan scanner.Scanner, pick picker.Picker, opts ...Option) DocumentCoordinator {
	c := &documentCoordinator{
		store:     store,
		objects:   objects,
		scanner:   scan,
		picker:    pick,
		logger:    zap.NewNop(),
		now:       time.Now,
		documents: []model.Document{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("component", "coordinator"))
	return c
}

func (c *documentCoordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = true
	c.mu.Unlock()

	ch, err := c.store.ObserveAll(ctx)
	if err != nil {
		c.mu.Lock()
		c.started = false
		c.mu.Unlock()
		return fmt.Errorf("observe documents: %w", err)
	}

	if first, ok := <-ch; ok {
		c.apply(first)
	}

	go func() {
		for snapshot := range ch {
			c.apply(snapshot)
		}
		c.mu.Lock()
		c.started = false
		c.mu.Unlock()
		c.logger.Debug("document subscription ended")
	}()
	return nil
}

func (c *documentCoordinator) apply(snapshot []model.Document) {
	docs := make([]model.Document, len(snapshot))
	copy(docs, snapshot)

	c.mu.Lock()
	c.documents = docs
	c.mu.Unlock()

	c.metrics.setTracked(len(docs))
	c.logger.Debug("document list updated", zap.Int("count", len(docs)))
}

func (c *documentCoordinator) RecordScan(loc model.Location) {
	c.mu.Lock()
	c.pending = loc
	c.mu.Unlock()
}

func (c *documentCoordinator) PendingScan() (model.Location, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pending, c.pending != ""
}

func (c *documentCoordinator) Documents() []model.Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Document, len(c.documents))
	copy(out, c.documents)
	return out
}

func (c *documentCoordinator) Get(id int64) (*model.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, d := range c.documents {
		if d.ID == id {
			doc := d
			return &doc, nil
		}
	}
	return nil, ErrNotFound
}

func (c *documentCoordinator) Observe(ctx context.Context) (<-chan []model.Document, error) {
	return c.store.ObserveAll(ctx)
}

func (c *documentCoordinator) Scan(ctx context.Context) (result *scanner.Result, err error) {
	ctx, span := tracer.Start(ctx, "DocumentCoordinator.Scan")
	defer func() {
		endSpan(span, err)
		c.metrics.observeScan(err)
	}()

	result, err = c.scanner.Scan(ctx, scanner.DefaultOptions())
	if err != nil {
		c.logger.Warn("scan did not complete", zap.Error(err))
		return nil, err
	}
	if result == nil || result.PDF == nil {
		return nil, fmt.Errorf("%w: no pdf in result", scanner.ErrFailed)
	}

	c.RecordScan(result.PDF.Location)
	span.SetAttributes(attribute.Int("scan.pages", result.PDF.PageCount))
	c.logger.Info("document scanned",
		zap.String("location", result.PDF.Location.String()),
		zap.Int("pages", result.PDF.PageCount),
	)
	return result, nil
}

func (c *documentCoordinator) SaveDocument(ctx context.Context, destination model.Location) (doc *model.Document, err error) {
	ctx, span := tracer.Start(ctx, "DocumentCoordinator.SaveDocument",
		trace.WithAttributes(attribute.String("document.destination", destination.String())))
	defer func() {
		endSpan(span, err)
		c.metrics.observeSave(err)
	}()
	return c.save(ctx, destination)
}

func (c *documentCoordinator) SaveToPicked(ctx context.Context) (doc *model.Document, err error) {
	ctx, span := tracer.Start(ctx, "DocumentCoordinator.SaveToPicked")
	defer func() {
		endSpan(span, err)
		c.metrics.observeSave(err)
	}()

	if _, ok := c.PendingScan(); !ok {
		return nil, ErrNoPendingScan
	}
	destination, err := c.picker.Pick(ctx, picker.SuggestName(c.now()), picker.MimeTypePDF)
	if err != nil {
		if errors.Is(err, picker.ErrCancelled) {
			return nil, ErrDestinationNotChosen
		}
		return nil, fmt.Errorf("%w: %w", ErrDestinationUnavailable, err)
	}
	span.SetAttributes(attribute.String("document.destination", destination.String()))
	return c.save(ctx, destination)
}

// save leaves the pending scan in place whatever the outcome.
func (c *documentCoordinator) save(ctx context.Context, destination model.Location) (*model.Document, error) {
	source, ok := c.PendingScan()
	if !ok {
		return nil, ErrNoPendingScan
	}
	if _, err := model.ParseLocation(destination.String()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDestinationUnavailable, err)
	}

	written, err := c.copy(ctx, source, destination)
	if err != nil {
		c.logger.Error("save pdf failed",
			zap.String("source", source.String()),
			zap.String("destination", destination.String()),
			zap.Error(err),
		)
		return nil, err
	}

	stored, err := c.store.InsertOrUpdate(ctx, model.NewDocument(destination, c.now()))
	if err != nil {
		c.logger.Error("record document failed", zap.String("destination", destination.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}

	c.logger.Info("pdf saved",
		zap.Int64("document_id", stored.ID),
		zap.String("name", stored.Name),
		zap.String("location", stored.Location.String()),
		zap.Int64("bytes", written),
	)
	return stored, nil
}

func (c *documentCoordinator) copy(ctx context.Context, source, destination model.Location) (int64, error) {
	in, err := c.objects.Open(ctx, source)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	defer in.Close()

	out, err := c.objects.Create(ctx, destination)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDestinationUnavailable, err)
	}

	n, err := io.Copy(out, &contextReader{ctx: ctx, r: in})
	if err != nil {
		// a truncated copy must not replace what the destination held
		if abortErr := storage.Abort(out, err); abortErr != nil {
			c.logger.Warn("discard partial copy failed", zap.String("destination", destination.String()), zap.Error(abortErr))
		}
		return n, fmt.Errorf("%w: %w", ErrCopyFailed, err)
	}
	if err := out.Close(); err != nil {
		return n, fmt.Errorf("%w: %w", ErrCopyFailed, err)
	}
	return n, nil
}

func (c *documentCoordinator) Open(ctx context.Context, id int64) (io.ReadCloser, *model.Document, error) {
	doc, err := c.Get(id)
	if err != nil {
		return nil, nil, err
	}
	r, err := c.objects.Open(ctx, doc.Location)
	if err != nil {
		return nil, doc, fmt.Errorf("%w: %w", ErrLocationUnavailable, err)
	}
	return r, doc, nil
}

func (c *documentCoordinator) Available(ctx context.Context, doc model.Document) bool {
	ok, err := c.objects.Exists(ctx, doc.Location)
	if err != nil {
		c.logger.Debug("location check failed", zap.Int64("document_id", doc.ID), zap.Error(err))
		return false
	}
	return ok
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *contextReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
