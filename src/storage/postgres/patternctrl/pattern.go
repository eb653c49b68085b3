package patternctrl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"resumatch/src/core/search"
	"resumatch/src/storage/postgres/pgval"
)

type QueryPattern struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	OriginalQuery  string `gorm:"uniqueIndex;not null"`
	RewrittenQuery string `gorm:"not null"`
	QueryType      string
	TotalUses      int
	SuccessCount   int
	SuccessRate    float64
	Features       pgval.Features
	LastUsed       time.Time
	CreatedAt      time.Time
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) (*Repository, error) {
	if err := db.AutoMigrate(&QueryPattern{}); err != nil {
		return nil, fmt.Errorf("failed to migrate query patterns: %v", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) TopBySuccessRate(ctx context.Context, limit int) ([]search.QueryPattern, error) {
	var patterns []QueryPattern
	result := r.db.WithContext(ctx).
		Order("success_rate DESC").
		Limit(limit).
		Find(&patterns)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to list query patterns: %v", result.Error)
	}

	domainPatterns := make([]search.QueryPattern, len(patterns))
	for i, pattern := range patterns {
		domainPatterns[i] = search.QueryPattern{
			OriginalQuery:  pattern.OriginalQuery,
			RewrittenQuery: pattern.RewrittenQuery,
			QueryType:      search.QueryType(pattern.QueryType),
			TotalUses:      pattern.TotalUses,
			SuccessCount:   pattern.SuccessCount,
			SuccessRate:    pattern.SuccessRate,
			Features:       search.QueryFeatures(pattern.Features),
			LastUsed:       pattern.LastUsed,
			CreatedAt:      pattern.CreatedAt,
		}
	}

	return domainPatterns, nil
}

// Upsert records one use of the pattern keyed by original query. The
// read-modify-write is not transactional: patterns are advisory learning
// signals and a lost increment is acceptable.
func (r *Repository) Upsert(ctx context.Context, pattern *search.QueryPattern) error {
	var existing QueryPattern
	result := r.db.WithContext(ctx).
		Where("original_query = ?", pattern.OriginalQuery).
		First(&existing)

	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up query pattern: %v", result.Error)
		}

		record := QueryPattern{
			OriginalQuery:  pattern.OriginalQuery,
			RewrittenQuery: pattern.RewrittenQuery,
			QueryType:      string(pattern.QueryType),
			TotalUses:      pattern.TotalUses,
			SuccessCount:   pattern.SuccessCount,
			Features:       pgval.Features(pattern.Features),
			LastUsed:       pattern.LastUsed,
			CreatedAt:      time.Now().UTC(),
		}
		if record.TotalUses > 0 {
			record.SuccessRate = float64(record.SuccessCount) / float64(record.TotalUses)
		}

		if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
			return fmt.Errorf("failed to create query pattern: %v", err)
		}
		return nil
	}

	totalUses := existing.TotalUses + pattern.TotalUses
	successCount := existing.SuccessCount + pattern.SuccessCount
	var successRate float64
	if totalUses > 0 {
		successRate = float64(successCount) / float64(totalUses)
	}

	update := r.db.WithContext(ctx).Model(&QueryPattern{}).
		Where("id = ?", existing.ID).
		Updates(map[string]interface{}{
			"rewritten_query": pattern.RewrittenQuery,
			"query_type":      string(pattern.QueryType),
			"total_uses":      totalUses,
			"success_count":   successCount,
			"success_rate":    successRate,
			"last_used":       pattern.LastUsed,
		})

	if update.Error != nil {
		return fmt.Errorf("failed to update query pattern: %v", update.Error)
	}

	return nil
}
