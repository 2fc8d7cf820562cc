package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusFailed    RunStatus = "FAILED"
)

// Run records one batch transformation over a directory of extracts.
type Run struct {
	ID       snowflake.ID `gorm:"primaryKey"`
	BatchRef string       `gorm:"type:text;not null;uniqueIndex"`
	InputDir string       `gorm:"type:text;not null"`
	Status   RunStatus    `gorm:"type:text;not null"`

	FilesRead     int64 `gorm:"not null"`
	FilesSkipped  int64 `gorm:"not null"`
	RowsRead      int64 `gorm:"not null"`
	RowsDropped   int64 `gorm:"not null"`
	ParseWarnings int64 `gorm:"not null"`

	SettlementCount int64 `gorm:"not null"`
	BlockedCount    int64 `gorm:"not null"`

	StartedAt   time.Time `gorm:"not null"`
	CompletedAt *time.Time

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Run) TableName() string { return "runs" }
