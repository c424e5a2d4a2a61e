// Package picker chooses where a saved document goes.
package picker

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"docscan/internal/model"
)

// MimeTypePDF is the MIME type requested when saving scans.
const MimeTypePDF = "application/pdf"

// ErrCancelled is returned when no destination was chosen.
var ErrCancelled = errors.New("destination not chosen")

// Picker asks for a writable destination for a new document.
type Picker interface {
	Pick(ctx context.Context, suggestedName, mimeType string) (model.Location, error)
}

// SuggestName returns the default file name for a document created at now.
func SuggestName(now time.Time) string {
	return "Document_" + now.Format("2006-01-02T15-04-05") + ".pdf"
}

// maxSuffix bounds the numbered alternatives tried for a taken name.
const maxSuffix = 1000

// ExistenceChecker reports whether a location already holds content.
type ExistenceChecker interface {
	Exists(ctx context.Context, loc model.Location) (bool, error)
}

// Option configures a DirectoryPicker.
type Option func(*DirectoryPicker)

// WithExistenceChecker makes Pick skip names that already hold content.
func WithExistenceChecker(c ExistenceChecker) Option {
	return func(p *DirectoryPicker) { p.objects = c }
}

// DirectoryPicker places every document directly under a base location.
// A name is never handed out twice, and with an ExistenceChecker it never
// points at existing content; taken names get a numbered suffix.
type DirectoryPicker struct {
	base    *url.URL
	objects ExistenceChecker

	mu     sync.Mutex
	issued map[string]struct{}
}

var _ Picker = (*DirectoryPicker)(nil)

// NewDirectoryPicker creates a picker rooted at base, e.g. file:///var/lib/docscan/documents.
func NewDirectoryPicker(base string, opts ...Option) (*DirectoryPicker, error) {
	loc, err := model.ParseLocation(base)
	if err != nil {
		return nil, fmt.Errorf("picker destination: %w", err)
	}
	u, err := loc.URL()
	if err != nil {
		return nil, err
	}
	if u.Opaque != "" {
		return nil, fmt.Errorf("picker destination: %w: opaque location %q", model.ErrMalformedLocation, base)
	}
	p := &DirectoryPicker{base: u, issued: make(map[string]struct{})}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Pick joins the suggested name under the base location. A PDF MIME type adds
// a missing .pdf extension. When the name is taken, name_1.pdf, name_2.pdf and
// so on are tried.
func (p *DirectoryPicker) Pick(ctx context.Context, suggestedName, mimeType string) (model.Location, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	name := strings.TrimSpace(path.Base("/" + strings.TrimSpace(suggestedName)))
	if name == "" || name == "/" || name == "." {
		return "", ErrCancelled
	}
	if mimeType == MimeTypePDF && !strings.EqualFold(path.Ext(name), ".pdf") {
		name += ".pdf"
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 0; n <= maxSuffix; n++ {
		candidate := name
		if n > 0 {
			candidate = stem + "_" + strconv.Itoa(n) + ext
		}
		loc := p.locationOf(candidate)
		taken, err := p.taken(ctx, loc)
		if err != nil {
			return "", err
		}
		if !taken {
			p.issued[loc.String()] = struct{}{}
			return loc, nil
		}
	}
	return "", fmt.Errorf("no free name for %q under %s", name, p.base)
}

func (p *DirectoryPicker) locationOf(name string) model.Location {
	u := *p.base
	u.Path = path.Join("/", p.base.Path, name)
	u.RawPath = ""
	return model.Location(u.String())
}

func (p *DirectoryPicker) taken(ctx context.Context, loc model.Location) (bool, error) {
	if _, ok := p.issued[loc.String()]; ok {
		return true, nil
	}
	if p.objects == nil {
		return false, nil
	}
	ok, err := p.objects.Exists(ctx, loc)
	if err != nil {
		return false, fmt.Errorf("check destination %s: %w", loc, err)
	}
	return ok, nil
}
