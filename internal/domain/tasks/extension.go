package tasks

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExtensionStatus string

const (
	ExtensionPending  ExtensionStatus = "PENDING"
	ExtensionApproved ExtensionStatus = "APPROVED"
	ExtensionRejected ExtensionStatus = "REJECTED"
)

type ExtensionRequest struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"studentId"`
	TaskID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"taskId"`
	Reason        string          `gorm:"column:reason;type:text" json:"reason"`
	RequestedDays int             `gorm:"column:requested_days;not null" json:"requestedDays"`
	Status        ExtensionStatus `gorm:"column:status;not null;index" json:"status"`
	CreatedAt     time.Time       `gorm:"not null;index" json:"createdAt"`
	ReviewedAt    *time.Time      `gorm:"column:reviewed_at" json:"reviewedAt,omitempty"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updatedAt"`
}

func (ExtensionRequest) TableName() string { return "extension_requests" }

func (e *ExtensionRequest) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (e *ExtensionRequest) IsPending() bool {
	return e.Status == ExtensionPending
}
