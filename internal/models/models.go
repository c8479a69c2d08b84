package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Source tags for resolved answers. The check constraint created in
// internal/database enforces the same set on the chat_logs table.
const (
	SourceAI       = "ai"
	SourceDataset  = "dataset"
	SourceFallback = "fallback"
	SourceError    = "error"
)

type ChatLog struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Question       string    `gorm:"type:text;not null"`
	Answer         *string   `gorm:"type:text"`
	Source         string    `gorm:"type:varchar(16);not null;index"`
	Timestamp      time.Time `gorm:"index;not null"`
	AnsweredAt     *time.Time
	ClientIP       string `gorm:"type:varchar(45);not null"`
	ResponseTimeMS int64  `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DailyStat maps a row of the chat_log_daily_stats view created in
// internal/database. Read-only; the application never writes it.
type DailyStat struct {
	Day               time.Time `json:"day"`
	Source            string    `json:"source"`
	Count             int64     `json:"count"`
	AvgResponseTimeMS float64   `json:"avg_response_time_ms"`
	AnsweredCount     int64     `json:"answered_count"`
}

func (ChatLog) TableName() string {
	return "chat_logs"
}

func (DailyStat) TableName() string {
	return "chat_log_daily_stats"
}

func (c *ChatLog) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
