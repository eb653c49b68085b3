package knowledgectrl

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"resumatch/src/core/search"
	"resumatch/src/storage/postgres/pgval"
)

type KnowledgeEntry struct {
	ID         int64  `gorm:"primaryKey"`
	Question   string `gorm:"not null"`
	Answer     string `gorm:"not null"`
	Embedding  pgval.Vector
	References pgval.Strings
	Confidence float64
	Features   pgval.Features
	UsageCount int
	LastUsed   time.Time
	CreatedAt  time.Time
}

type Repository struct {
	db        *gorm.DB
	snowflake *snowflake.Node
}

func NewRepository(db *gorm.DB) (*Repository, error) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %v", err)
	}

	if err := db.AutoMigrate(&KnowledgeEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate knowledge entries: %v", err)
	}

	return &Repository{
		db:        db,
		snowflake: node,
	}, nil
}

func (r *Repository) All(ctx context.Context) ([]search.KnowledgeBaseEntry, error) {
	var entries []KnowledgeEntry
	result := r.db.WithContext(ctx).Find(&entries)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list knowledge entries: %v", result.Error)
	}

	domainEntries := make([]search.KnowledgeBaseEntry, len(entries))
	for i, entry := range entries {
		domainEntries[i] = search.KnowledgeBaseEntry{
			ID:         entry.ID,
			Question:   entry.Question,
			Embedding:  entry.Embedding,
			Answer:     entry.Answer,
			References: entry.References,
			Confidence: entry.Confidence,
			Features:   search.QueryFeatures(entry.Features),
			UsageCount: entry.UsageCount,
			LastUsed:   entry.LastUsed,
			CreatedAt:  entry.CreatedAt,
		}
	}

	return domainEntries, nil
}

func (r *Repository) Create(ctx context.Context, entry *search.KnowledgeBaseEntry) error {
	record := KnowledgeEntry{
		ID:         r.snowflake.Generate().Int64(),
		Question:   entry.Question,
		Answer:     entry.Answer,
		Embedding:  pgval.Vector(entry.Embedding),
		References: pgval.Strings(entry.References),
		Confidence: entry.Confidence,
		Features:   pgval.Features(entry.Features),
		UsageCount: entry.UsageCount,
		LastUsed:   entry.LastUsed,
		CreatedAt:  entry.CreatedAt,
	}

	result := r.db.WithContext(ctx).Create(&record)
	if result.Error != nil {
		return fmt.Errorf("failed to create knowledge entry: %v", result.Error)
	}
	entry.ID = record.ID

	return nil
}

// Touch bumps the usage counter and last-used timestamp. Concurrent touches
// may lose an increment; the counter is advisory.
func (r *Repository) Touch(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Model(&KnowledgeEntry{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"usage_count": gorm.Expr("usage_count + 1"),
			"last_used":   time.Now().UTC(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to touch knowledge entry: %v", result.Error)
	}

	return nil
}
