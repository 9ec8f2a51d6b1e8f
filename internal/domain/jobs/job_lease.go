package jobs

import "time"

// JobLease is a named, expiring lock row shared by every instance. A holder
// owns the lease while LockUntil is in the future.
type JobLease struct {
	Name      string    `gorm:"column:name;primaryKey;size:64" json:"name"`
	LockUntil time.Time `gorm:"column:lock_until;not null" json:"lock_until"`
	LockedAt  time.Time `gorm:"column:locked_at;not null" json:"locked_at"`
	LockedBy  string    `gorm:"column:locked_by;not null;size:255" json:"locked_by"`
}

func (JobLease) TableName() string { return "job_lease" }
