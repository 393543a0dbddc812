package models

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskQueued     TaskStatus = "queued"
	TaskProcessing TaskStatus = "processing"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// TaskRecord tracks one dispatched background job and its outcome.
type TaskRecord struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Type         string     `gorm:"size:64;not null;index" json:"type"`
	Payload      string     `gorm:"type:text" json:"payload,omitempty"`
	Status       TaskStatus `gorm:"size:16;not null;default:'queued';index" json:"status"`
	Result       *string    `gorm:"type:text" json:"result,omitempty"`
	ErrorMessage *string    `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (TaskRecord) TableName() string {
	return "task_records"
}
