package common

import (
	"time"

	"gorm.io/gorm"
)

const (
	JobStatusPreviewing = "previewing"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusCancelled  = "cancelled"
	JobStatusDiscarded  = "discarded"
)

// ImportJob tracks one import run from preview to its final outcome
type ImportJob struct {
	ID             string     `gorm:"primaryKey;type:text" json:"id"`
	IdempotencyKey string     `gorm:"uniqueIndex;not null" json:"idempotency_key"`
	EntityType     string     `gorm:"not null" json:"entity_type"` // players, teams, coaches
	Status         string     `gorm:"not null" json:"status"`
	FileName       string     `json:"file_name,omitempty"`
	FilePath       string     `json:"-"` // copy of the upload under the uploads dir
	TotalRecords   int        `gorm:"default:0" json:"total_records"`
	DuplicateCount int        `gorm:"default:0" json:"duplicate_count"`
	ProcessedCount int        `gorm:"default:0" json:"processed_count"`
	Progress       int        `gorm:"default:0" json:"progress"`
	CreatedCount   int        `gorm:"default:0" json:"created_count"`
	UpdatedCount   int        `gorm:"default:0" json:"updated_count"`
	SkippedCount   int        `gorm:"default:0" json:"skipped_count"`
	ErrorCount     int        `gorm:"default:0" json:"error_count"`
	Errors         string     `gorm:"type:text" json:"errors,omitempty"`      // JSON array of RecordError
	LinkErrors     string     `gorm:"type:text" json:"link_errors,omitempty"` // JSON array of RecordError
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updated_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// ApiMetric tracks API performance metrics
type ApiMetric struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Endpoint      string    `gorm:"not null" json:"endpoint"`
	Method        string    `gorm:"not null" json:"method"`
	StatusCode    int       `gorm:"not null" json:"status_code"`
	DurationMs    int       `gorm:"not null" json:"duration_ms"`
	RowsProcessed int       `gorm:"default:0" json:"rows_processed"`
	Errors        string    `gorm:"type:text" json:"errors,omitempty"` // JSON errors
	Timestamp     time.Time `gorm:"not null" json:"timestamp"`
}

func (ImportJob) TableName() string { return "import_jobs" }
func (ApiMetric) TableName() string { return "api_metrics" }

// AutoMigrateJobs creates job tracking tables
func AutoMigrateJobs(db *gorm.DB) error {
	return db.AutoMigrate(&ImportJob{}, &ApiMetric{})
}
