package tasks

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "PENDING"
	SubmissionApproved SubmissionStatus = "APPROVED"
	SubmissionRejected SubmissionStatus = "REJECTED"
	SubmissionDelayed  SubmissionStatus = "DELAYED"
)

func ParseSubmissionStatus(s string) (SubmissionStatus, bool) {
	switch st := SubmissionStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case SubmissionPending, SubmissionApproved, SubmissionRejected, SubmissionDelayed:
		return st, true
	}
	return "", false
}

// Submission has no uniqueness constraint; TaskSchedule.IsSubmitted gates it.
type Submission struct {
	ID                uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID         uuid.UUID        `gorm:"type:uuid;not null;index" json:"studentId"`
	TaskID            uuid.UUID        `gorm:"type:uuid;not null;index" json:"taskId"`
	Task              *Task            `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"task,omitempty"`
	SubmissionFileURL string           `gorm:"column:submission_file_url;type:text" json:"submissionFileUrl"`
	Status            SubmissionStatus `gorm:"column:status;not null;index" json:"status"`
	Score             *int             `gorm:"column:score" json:"score,omitempty"`
	Feedback          string           `gorm:"column:feedback;type:text" json:"feedback,omitempty"`
	SubmittedAt       time.Time        `gorm:"column:submitted_at;not null" json:"submittedAt"`
	ReviewedAt        *time.Time       `gorm:"column:reviewed_at" json:"reviewedAt,omitempty"`
	CreatedAt         time.Time        `gorm:"not null" json:"createdAt"`
	UpdatedAt         time.Time        `gorm:"not null" json:"updatedAt"`
}

func (Submission) TableName() string { return "submissions" }

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// NewSubmission applies the task's review policy: auto-review approves with
// full marks, otherwise the submission waits for a reviewer.
func NewSubmission(task *Task, studentID uuid.UUID, fileURL string, now time.Time) *Submission {
	sub := &Submission{
		ID:                uuid.New(),
		StudentID:         studentID,
		TaskID:            task.ID,
		SubmissionFileURL: strings.TrimSpace(fileURL),
		Status:            SubmissionPending,
		SubmittedAt:       now,
	}
	if task.AutoReview {
		full := 100
		sub.Status = SubmissionApproved
		sub.Score = &full
		sub.ReviewedAt = &now
	}
	return sub
}
