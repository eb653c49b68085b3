package feedbackctrl

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"resumatch/src/core/search"
)

type Feedback struct {
	ID          int64  `gorm:"primaryKey"`
	UserID      string `gorm:"index:idx_feedback_user_time,priority:1"`
	Query       string `gorm:"not null"`
	ResultID    string `gorm:"not null;index"`
	Rating      int    `gorm:"not null"`
	Interaction string `gorm:"not null"`
	SessionID   string
	Timestamp   time.Time `gorm:"index:idx_feedback_user_time,priority:2,sort:desc"`
}

type Repository struct {
	db        *gorm.DB
	snowflake *snowflake.Node
}

func NewRepository(db *gorm.DB) (*Repository, error) {
	node, err := snowflake.NewNode(2)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %v", err)
	}

	if err := db.AutoMigrate(&Feedback{}); err != nil {
		return nil, fmt.Errorf("failed to migrate feedback: %v", err)
	}

	return &Repository{
		db:        db,
		snowflake: node,
	}, nil
}

// Create appends one feedback event. Feedback is an event log, not a set:
// identical submissions produce distinct rows.
func (r *Repository) Create(ctx context.Context, entry *search.FeedbackEntry) error {
	record := Feedback{
		ID:          r.snowflake.Generate().Int64(),
		UserID:      entry.UserID,
		Query:       entry.Query,
		ResultID:    entry.ResultID,
		Rating:      entry.Rating,
		Interaction: string(entry.Interaction),
		SessionID:   entry.SessionID,
		Timestamp:   entry.Timestamp,
	}

	result := r.db.WithContext(ctx).Create(&record)
	if result.Error != nil {
		return fmt.Errorf("failed to create feedback: %v", result.Error)
	}

	return nil
}

func (r *Repository) RecentByUser(ctx context.Context, userID string, limit int) ([]search.FeedbackEntry, error) {
	var records []Feedback
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&records)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to list feedback: %v", result.Error)
	}

	entries := make([]search.FeedbackEntry, len(records))
	for i, record := range records {
		entries[i] = search.FeedbackEntry{
			UserID:      record.UserID,
			Query:       record.Query,
			ResultID:    record.ResultID,
			Rating:      record.Rating,
			Interaction: search.Interaction(record.Interaction),
			SessionID:   record.SessionID,
			Timestamp:   record.Timestamp,
		}
	}

	return entries, nil
}
