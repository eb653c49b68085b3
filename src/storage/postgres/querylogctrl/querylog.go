package querylogctrl

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"resumatch/src/core/search"
	"resumatch/src/storage/postgres/pgval"
)

type QueryLog struct {
	ID             int64  `gorm:"primaryKey"`
	Query          string `gorm:"not null"`
	RewrittenQuery string
	Results        pgval.Strings
	UserID         string `gorm:"index:idx_querylog_user_time,priority:1"`
	Confidence     float64
	ResultCount    int
	Features       pgval.Features
	SessionID      string
	Timestamp      time.Time `gorm:"index:idx_querylog_user_time,priority:2,sort:desc"`
}

type Repository struct {
	db        *gorm.DB
	snowflake *snowflake.Node
}

func NewRepository(db *gorm.DB) (*Repository, error) {
	node, err := snowflake.NewNode(3)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %v", err)
	}

	if err := db.AutoMigrate(&QueryLog{}); err != nil {
		return nil, fmt.Errorf("failed to migrate query logs: %v", err)
	}

	return &Repository{
		db:        db,
		snowflake: node,
	}, nil
}

func (r *Repository) Create(ctx context.Context, entry *search.QueryLogEntry) error {
	record := QueryLog{
		ID:             r.snowflake.Generate().Int64(),
		Query:          entry.Query,
		RewrittenQuery: entry.RewrittenQuery,
		Results:        pgval.Strings(entry.Results),
		UserID:         entry.UserID,
		Confidence:     entry.Confidence,
		ResultCount:    entry.ResultCount,
		Features:       pgval.Features(entry.Features),
		SessionID:      entry.SessionID,
		Timestamp:      entry.Timestamp,
	}

	result := r.db.WithContext(ctx).Create(&record)
	if result.Error != nil {
		return fmt.Errorf("failed to create query log: %v", result.Error)
	}

	return nil
}
