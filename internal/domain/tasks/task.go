package tasks

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task is one unit of weekly content for a domain (internship track).
// WeekNo orders tasks within a domain; (domain, week_no) is not unique.
type Task struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Domain      string     `gorm:"column:domain;not null;index:idx_tasks_domain_week,priority:1" json:"domain"`
	WeekNo      int        `gorm:"column:week_no;not null;index:idx_tasks_domain_week,priority:2" json:"weekNo"`
	Title       string     `gorm:"column:title;not null" json:"title"`
	Description string     `gorm:"column:description;type:text" json:"description"`
	TaskFileURL string     `gorm:"column:task_file_url;type:text" json:"taskFileUrl,omitempty"`
	VideoURL    string     `gorm:"column:video_url;type:text" json:"videoUrl,omitempty"`
	URLFileURL  string     `gorm:"column:url_file_url;type:text" json:"urlFileUrl,omitempty"`
	StartDate   *time.Time `gorm:"column:start_date" json:"startDate,omitempty"`
	Deadline    *time.Time `gorm:"column:deadline" json:"deadline,omitempty"`
	IsManual    bool       `gorm:"column:is_manual;not null" json:"isManual"`
	AutoReview  bool       `gorm:"column:auto_review;not null" json:"autoReview"`
	Active      bool       `gorm:"column:active;not null;index" json:"active"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updatedAt"`
}

func (Task) TableName() string { return "tasks" }

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// ContentField names one of the optional content links on a Task.
type ContentField string

const (
	ContentTaskFile ContentField = "taskFile"
	ContentVideo    ContentField = "video"
	ContentURLFile  ContentField = "urlFile"
)

func ParseContentField(s string) (ContentField, bool) {
	switch ContentField(s) {
	case ContentTaskFile, ContentVideo, ContentURLFile:
		return ContentField(s), true
	}
	return "", false
}

// Column returns the persisted column backing the field.
func (f ContentField) Column() string {
	switch f {
	case ContentTaskFile:
		return "task_file_url"
	case ContentVideo:
		return "video_url"
	case ContentURLFile:
		return "url_file_url"
	}
	return ""
}

// URL returns the current value of the field on t.
func (t *Task) URL(f ContentField) string {
	switch f {
	case ContentTaskFile:
		return t.TaskFileURL
	case ContentVideo:
		return t.VideoURL
	case ContentURLFile:
		return t.URLFileURL
	}
	return ""
}
