package domain

import (
	"context"
	"time"
)

// ProcessedEvent records an inbound event that has been applied
type ProcessedEvent struct {
	ID          uint      `gorm:"primaryKey"`
	EventID     string    `gorm:"size:64;uniqueIndex;not null"`
	EventType   string    `gorm:"size:64;not null"`
	ProcessedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name
func (ProcessedEvent) TableName() string {
	return "processed_events"
}

// ProcessedEventRepository remembers which inbound events were applied
type ProcessedEventRepository interface {
	// MarkProcessed records eventID. It reports false when the event was
	// recorded before. Run it in the transaction that applies the event.
	MarkProcessed(ctx context.Context, eventID, eventType string) (bool, error)
}
