package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "file uri", input: "file:///docs/a.pdf"},
		{name: "content uri", input: "content://src/scan1.pdf"},
		{name: "s3 uri", input: "s3://bucket/scans/a.pdf"},
		{name: "surrounding spaces trimmed", input: "  file:///a.pdf  "},
		{name: "empty", input: "", wantErr: true},
		{name: "relative path", input: "docs/a.pdf", wantErr: true},
		{name: "bad escape", input: "file:///%zz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := ParseLocation(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedLocation)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, loc.Scheme())
		})
	}
}

func TestLocation_DisplayName(t *testing.T) {
	tests := []struct {
		loc  Location
		want string
	}{
		{"file:///docs/Document_2024-01-01T10-00.pdf", "Document_2024-01-01T10-00.pdf"},
		{"content://com.android.providers/document/42", "42"},
		{"file:///docs/folder/", "folder"},
		{"file:///docs/My%20Scan.pdf", "My Scan.pdf"},
		{"s3://bucket", DefaultDocumentName},
		{"file:///", DefaultDocumentName},
		{"mailto:someone@example.com", DefaultDocumentName},
	}

	for _, tt := range tests {
		t.Run(string(tt.loc), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.loc.DisplayName())
		})
	}
}

func TestFileLocation(t *testing.T) {
	loc := FileLocation("/tmp/scans/a.pdf")
	assert.Equal(t, Location("file:///tmp/scans/a.pdf"), loc)
	assert.Equal(t, "file", loc.Scheme())
	assert.Equal(t, "a.pdf", loc.LastPathSegment())
}

func TestNewDocument(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	doc := NewDocument("file:///docs/scan.pdf", now)

	assert.Zero(t, doc.ID)
	assert.Equal(t, now.UnixMilli(), doc.CreatedAt)
	assert.Equal(t, "scan.pdf", doc.Name)
	assert.Equal(t, Location("file:///docs/scan.pdf"), doc.Location)
	assert.True(t, now.Equal(doc.Created()))
}
