package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"docscan/internal/model"
)

const (
	defaultTimeout = 5 * time.Minute
	defaultSettle  = 500 * time.Millisecond
)

// InboxScanner waits for a scanning device or app to drop a PDF into a directory.
// A scan completes with the first new .pdf file that stops changing for the settle
// interval. Files already present when the scan starts are ignored.
type InboxScanner struct {
	dir     string
	timeout time.Duration
	settle  time.Duration
	logger  *zap.Logger
}

// InboxOption configures an InboxScanner.
type InboxOption func(*InboxScanner)

// WithTimeout bounds how long a scan waits for a file.
func WithTimeout(d time.Duration) InboxOption {
	return func(s *InboxScanner) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithSettle sets how long a file must stay unchanged before it is accepted.
func WithSettle(d time.Duration) InboxOption {
	return func(s *InboxScanner) {
		if d > 0 {
			s.settle = d
		}
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) InboxOption {
	return func(s *InboxScanner) { s.logger = l }
}

// NewInboxScanner creates a scanner over dir.
func NewInboxScanner(dir string, opts ...InboxOption) *InboxScanner {
	s := &InboxScanner{
		dir:     dir,
		timeout: defaultTimeout,
		settle:  defaultSettle,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ Scanner = (*InboxScanner)(nil)

// Scan blocks until a PDF arrives, ctx is cancelled (ErrCancelled) or the timeout passes (ErrFailed).
func (s *InboxScanner) Scan(ctx context.Context, opts Options) (*Result, error) {
	if !opts.Wants(FormatPDF) {
		return nil, fmt.Errorf("%w: inbox only produces pdf", ErrUnavailable)
	}
	dir, err := filepath.Abs(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: inbox %s is not a directory", ErrUnavailable, dir)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return nil, fmt.Errorf("%w: watch %s: %v", ErrUnavailable, dir, err)
	}
	s.logger.Debug("scan waiting for inbox", zap.String("dir", dir), zap.Duration("timeout", s.timeout))

	path, err := s.await(ctx, w)
	if err != nil {
		return nil, err
	}

	pages := countPages(path)
	if opts.PageLimit > 0 && pages > opts.PageLimit {
		return nil, fmt.Errorf("%w: %d pages exceeds limit %d", ErrFailed, pages, opts.PageLimit)
	}
	s.logger.Info("scan received", zap.String("path", path), zap.Int("pages", pages))

	return &Result{PDF: &PDF{Location: model.FileLocation(path), PageCount: pages}}, nil
}

func (s *InboxScanner) await(ctx context.Context, w *fsnotify.Watcher) (string, error) {
	deadline := time.NewTimer(s.timeout)
	defer deadline.Stop()

	settle := time.NewTimer(s.settle)
	settle.Stop()
	defer settle.Stop()

	var candidate string
	for {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		case <-deadline.C:
			return "", fmt.Errorf("%w: no document within %s", ErrFailed, s.timeout)
		case ev, ok := <-w.Events:
			if !ok {
				return "", fmt.Errorf("%w: watcher closed", ErrFailed)
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !isPDF(ev.Name) {
				continue
			}
			if candidate != "" && candidate != ev.Name {
				continue
			}
			candidate = ev.Name
			settle.Reset(s.settle)
		case err, ok := <-w.Errors:
			if !ok {
				return "", fmt.Errorf("%w: watcher closed", ErrFailed)
			}
			s.logger.Debug("inbox watcher error", zap.Error(err))
		case <-settle.C:
			if fi, err := os.Stat(candidate); err == nil && fi.Mode().IsRegular() {
				return candidate, nil
			}
			// removed before it settled; wait for another one
			candidate = ""
		}
	}
}

func isPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// countPages returns the page count of the PDF at path, or 0 when it cannot be parsed.
func countPages(path string) (n int) {
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()
	return r.NumPage()
}

