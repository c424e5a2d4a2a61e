// Package gormrepo implements repository.DocumentRepository on top of GORM,
// for deployments that already manage their schema through GORM models.
package gormrepo

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"docscan/internal/model"
	"docscan/internal/repository"
)

// documentRow maps the documents table. Created is deliberately not named CreatedAt
// so GORM leaves the millisecond value alone instead of auto-filling it.
type documentRow struct {
	ID       int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Created  int64  `gorm:"column:created_at;not null;index:idx_documents_created_at"`
	Name     string `gorm:"column:name;not null"`
	Location string `gorm:"column:location;not null"`
}

func (documentRow) TableName() string { return "documents" }

func (r documentRow) toModel() (model.Document, error) {
	loc, err := model.ParseLocation(r.Location)
	if err != nil {
		return model.Document{}, fmt.Errorf("document %d: %w", r.ID, err)
	}
	return model.Document{ID: r.ID, CreatedAt: r.Created, Name: r.Name, Location: loc}, nil
}

// DocumentGorm is a GORM implementation of repository.DocumentRepository.
type DocumentGorm struct {
	db *gorm.DB
}

// NewDocumentGorm creates a new DocumentGorm repository.
func NewDocumentGorm(db *gorm.DB) *DocumentGorm {
	return &DocumentGorm{db: db}
}

var _ repository.DocumentRepository = (*DocumentGorm)(nil)

// Migrate creates or updates the documents table.
func (r *DocumentGorm) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&documentRow{})
}

// Upsert inserts a new row for a zero ID, otherwise replaces name and location of the row with that ID.
func (r *DocumentGorm) Upsert(ctx context.Context, doc *model.Document) (*model.Document, error) {
	row := documentRow{
		ID:       doc.ID,
		Created:  doc.CreatedAt,
		Name:     doc.Name,
		Location: doc.Location.String(),
	}
	db := r.db.WithContext(ctx)
	if doc.ID == 0 {
		if err := db.Create(&row).Error; err != nil {
			return nil, err
		}
	} else {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "location"}),
		}).Create(&row).Error
		if err != nil {
			return nil, err
		}
		if db.Dialector.Name() == "postgres" {
			// keep the id sequence ahead of explicitly inserted ids
			err := db.Exec(`SELECT setval(pg_get_serial_sequence('documents', 'id'), (SELECT MAX(id) FROM documents))`).Error
			if err != nil {
				return nil, err
			}
		}
		// re-read so created_at reflects the stored row, not the caller's value
		if err := db.First(&row, doc.ID).Error; err != nil {
			return nil, err
		}
	}

	out, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAll returns every document ordered by ID.
func (r *DocumentGorm) ListAll(ctx context.Context) ([]model.Document, error) {
	var rows []documentRow
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]model.Document, 0, len(rows))
	for _, row := range rows {
		d, err := row.toModel()
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, nil
}
