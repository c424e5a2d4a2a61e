package postgres

import (
	"context"
	"database/sql"

	"docscan/internal/model"
	"docscan/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// Upsert inserts a new row for a zero ID, otherwise replaces name and location of the row with that ID.
func (r *DocumentPostgres) Upsert(ctx context.Context, doc *model.Document) (*model.Document, error) {
	var row *sql.Row
	if doc.ID == 0 {
		const q = `
			INSERT INTO documents (created_at, name, location)
			VALUES ($1, $2, $3)
			RETURNING id, created_at, name, location
		`
		row = r.db.QueryRowContext(ctx, q, doc.CreatedAt, doc.Name, doc.Location.String())
	} else {
		// An explicit id bypasses the sequence, so it is moved past the highest id
		// to keep later id-less inserts from colliding.
		const q = `
			WITH up AS (
				INSERT INTO documents (id, created_at, name, location)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, location = EXCLUDED.location
				RETURNING id, created_at, name, location
			), seq AS (
				SELECT setval(pg_get_serial_sequence('documents', 'id'),
					GREATEST((SELECT COALESCE(MAX(id), 0) FROM documents), (SELECT id FROM up)))
			)
			SELECT up.id, up.created_at, up.name, up.location FROM up, seq
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
func (r *DocumentPostgres) ListAll(ctx context.Context) ([]model.Document, error) {
	const q = `
		SELECT id, created_at, name, location
		FROM documents
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, q)
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
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
