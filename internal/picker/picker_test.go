package picker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docscan/internal/model"
)

func TestSuggestName(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 5, 0, time.UTC)
	assert.Equal(t, "Document_2024-01-01T10-00-05.pdf", SuggestName(now))
}

func TestDirectoryPicker_Pick(t *testing.T) {
	p, err := NewDirectoryPicker("file:///docs")
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name     string
		suggest  string
		mimeType string
		want     model.Location
	}{
		{"keeps pdf name", "Document_2024-01-01T10-00.pdf", MimeTypePDF, "file:///docs/Document_2024-01-01T10-00.pdf"},
		{"adds pdf extension", "report", MimeTypePDF, "file:///docs/report.pdf"},
		{"other mime untouched", "notes.txt", "text/plain", "file:///docs/notes.txt"},
		{"strips directories", "../../etc/passwd.pdf", MimeTypePDF, "file:///docs/passwd.pdf"},
		{"escapes spaces", "my scan.pdf", MimeTypePDF, "file:///docs/my%20scan.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Pick(ctx, tt.suggest, tt.mimeType)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDirectoryPicker_DisplayNameRoundTrip(t *testing.T) {
	p, err := NewDirectoryPicker("s3://scans/inbox/")
	require.NoError(t, err)

	got, err := p.Pick(context.Background(), "my scan.pdf", MimeTypePDF)
	require.NoError(t, err)

	assert.Equal(t, model.Location("s3://scans/inbox/my%20scan.pdf"), got)
	assert.Equal(t, "my scan.pdf", got.DisplayName())
}

func TestDirectoryPicker_Cancelled(t *testing.T) {
	p, err := NewDirectoryPicker("file:///docs")
	require.NoError(t, err)

	_, err = p.Pick(context.Background(), "  ", MimeTypePDF)
	assert.ErrorIs(t, err, ErrCancelled)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Pick(ctx, "a.pdf", MimeTypePDF)
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestNewDirectoryPicker_Invalid(t *testing.T) {
	_, err := NewDirectoryPicker("")
	assert.ErrorIs(t, err, model.ErrMalformedLocation)

	_, err = NewDirectoryPicker("relative/dir")
	assert.ErrorIs(t, err, model.ErrMalformedLocation)

	_, err = NewDirectoryPicker("mailto:someone@example.com")
	assert.ErrorIs(t, err, model.ErrMalformedLocation)
}

type existing map[model.Location]bool

func (e existing) Exists(_ context.Context, loc model.Location) (bool, error) {
	return e[loc], nil
}

type brokenChecker struct{}

func (brokenChecker) Exists(context.Context, model.Location) (bool, error) {
	return false, errors.New("connection refused")
}

func TestDirectoryPicker_SameNameTwice(t *testing.T) {
	p, err := NewDirectoryPicker("file:///docs")
	require.NoError(t, err)
	ctx := context.Background()
	name := SuggestName(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))

	first, err := p.Pick(ctx, name, MimeTypePDF)
	require.NoError(t, err)
	second, err := p.Pick(ctx, name, MimeTypePDF)
	require.NoError(t, err)
	third, err := p.Pick(ctx, name, MimeTypePDF)
	require.NoError(t, err)

	assert.Equal(t, model.Location("file:///docs/Document_2024-01-01T10-00-00.pdf"), first)
	assert.Equal(t, model.Location("file:///docs/Document_2024-01-01T10-00-00_1.pdf"), second)
	assert.Equal(t, model.Location("file:///docs/Document_2024-01-01T10-00-00_2.pdf"), third)
}

func TestDirectoryPicker_SkipsExistingContent(t *testing.T) {
	p, err := NewDirectoryPicker("file:///docs", WithExistenceChecker(existing{
		"file:///docs/report.pdf":   true,
		"file:///docs/report_1.pdf": true,
	}))
	require.NoError(t, err)

	got, err := p.Pick(context.Background(), "report.pdf", MimeTypePDF)
	require.NoError(t, err)
	assert.Equal(t, model.Location("file:///docs/report_2.pdf"), got)
}

func TestDirectoryPicker_ExistenceCheckFails(t *testing.T) {
	p, err := NewDirectoryPicker("s3://scans", WithExistenceChecker(brokenChecker{}))
	require.NoError(t, err)

	_, err = p.Pick(context.Background(), "report.pdf", MimeTypePDF)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCancelled)
}

func TestDirectoryPicker_ConcurrentPicksAreDistinct(t *testing.T) {
	p, err := NewDirectoryPicker("file:///docs")
	require.NoError(t, err)

	const n = 20
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		got = make(map[model.Location]struct{})
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loc, err := p.Pick(context.Background(), "scan.pdf", MimeTypePDF)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			got[loc] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, got, n)
}
