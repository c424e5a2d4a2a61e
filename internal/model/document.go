package model

import "time"

// DefaultDocumentName is used when a destination location has no path segment to name the document after.
const DefaultDocumentName = "Document"

// Document represents a saved scan.
// It is a pure domain model with no database-specific dependencies or tags.
// Location only references the PDF bytes; they are owned by whatever store the location points into.
type Document struct {
	ID        int64    `json:"id"`
	CreatedAt int64    `json:"created_at"` // milliseconds since epoch
	Name      string   `json:"name"`
	Location  Location `json:"location"`
}

// NewDocument builds an unsaved record for a PDF copied to loc.
// ID stays 0 so the store assigns a fresh one on insert.
func NewDocument(loc Location, now time.Time) Document {
	return Document{
		CreatedAt: now.UnixMilli(),
		Name:      loc.DisplayName(),
		Location:  loc,
	}
}

// Created returns CreatedAt as a time value.
func (d Document) Created() time.Time {
	return time.UnixMilli(d.CreatedAt)
}
