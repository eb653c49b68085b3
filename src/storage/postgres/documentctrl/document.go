package documentctrl

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"resumatch/src/core/search"
	"resumatch/src/storage/postgres/pgval"
)

type Document struct {
	ID           string `gorm:"primaryKey"`
	OriginalName string `gorm:"index"`
	FileName     string `gorm:"index"`
	Text         string
	Skills       pgval.Strings
	Role         string
	Experience   string
	ProcessedAt  time.Time
	CreatedAt    time.Time
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) (*Repository, error) {
	if err := db.AutoMigrate(&Document{}); err != nil {
		return nil, fmt.Errorf("failed to migrate documents: %v", err)
	}

	return &Repository{db: db}, nil
}

// FindByRefs resolves stored references, which may be document IDs or
// display names depending on what the ingestion side recorded.
func (r *Repository) FindByRefs(ctx context.Context, refs []string) ([]search.Document, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	var records []Document
	result := r.db.WithContext(ctx).
		Where("id IN ?", refs).
		Or("original_name IN ?", refs).
		Or("file_name IN ?", refs).
		Find(&records)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to find documents: %v", result.Error)
	}

	documents := make([]search.Document, len(records))
	for i, record := range records {
		documents[i] = search.Document{
			ID:           record.ID,
			OriginalName: record.OriginalName,
			FileName:     record.FileName,
			Text:         record.Text,
			Skills:       record.Skills,
			Role:         record.Role,
			Experience:   record.Experience,
			ProcessedAt:  record.ProcessedAt,
			CreatedAt:    record.CreatedAt,
		}
	}

	return documents, nil
}
