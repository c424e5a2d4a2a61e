package sqlite

import (
	"context"
	"database/sql"

	"docscan/internal/model"
	"docscan/internal/repository"
)

// DocumentSQLite is a SQLite implementation of repository.DocumentRepository.
// It relies on UPSERT and RETURNING, available since SQLite 3.35.
type DocumentSQLite struct {
	db *sql.DB
}

// NewDocumentSQLite creates a new DocumentSQLite repository.
func NewDocumentSQLite(db *sql.DB) *DocumentSQLite {
	return &DocumentSQLite{db: db}
}

var _ repository.DocumentRepository = (*DocumentSQLite)(nil)

// Upsert inserts a new row for a zero ID, otherwise replaces name and location of the row with that ID.
func (r *DocumentSQLite) Upsert(ctx context.Context, doc *model.Document) (*model.Document, error) {
	var row *sql.Row
	if doc.ID == 0 {
		const q = `
			INSERT INTO documents (created_at, name, location)
			VALUES (?, ?, ?)
			RETURNING id, created_at, name, location
		`
		row = r.db.QueryRowContext(ctx, q, doc.CreatedAt, doc.Name, doc.Location.String())
	} else {
		const q = `
			INSERT INTO documents (id, created_at, name, location)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET name = excluded.name, location = excluded.location
			RETURNING id, created_at, name, location
		`
		row = r.db.QueryRowContext(ctx, q, doc.ID, doc.CreatedAt, doc.Name, doc.Location.String())
	}

	out, err := repository.ScanDocument(row)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAll returns every document ordered by ID.
func (r *DocumentSQLite) ListAll(ctx context.Context) ([]model.Document, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, created_at, name, location FROM documents ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := repository.ScanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}
