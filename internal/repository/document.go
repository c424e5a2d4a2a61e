package repository

import (
	"context"
	"fmt"

	"docscan/internal/model"
)

// DocumentRepository defines data access for document records.
// Persistence only; no business logic.
type DocumentRepository interface {
	// Upsert stores doc. A zero ID inserts a new row and the store assigns the ID;
	// a non-zero ID replaces name and location of that row, or inserts it under that ID.
	// created_at of an existing row is never changed. Returns the stored row.
	Upsert(ctx context.Context, doc *model.Document) (*model.Document, error)

	// ListAll returns every row in insertion order.
	ListAll(ctx context.Context) ([]model.Document, error)
}

// RowScanner is the subset of *sql.Row and *sql.Rows used by ScanDocument.
type RowScanner interface {
	Scan(dest ...any) error
}

// ScanDocument reads an (id, created_at, name, location) row and parses the stored location.
func ScanDocument(row RowScanner) (model.Document, error) {
	var (
		d   model.Document
		loc string
	)
	if err := row.Scan(&d.ID, &d.CreatedAt, &d.Name, &loc); err != nil {
		return model.Document{}, err
	}
	parsed, err := model.ParseLocation(loc)
	if err != nil {
		return model.Document{}, fmt.Errorf("document %d: %w", d.ID, err)
	}
	d.Location = parsed
	return d, nil
}
