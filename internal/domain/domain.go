package domain

import (
	"github.com/rishiwork16-sys/skilledUp-Website/internal/domain/jobs"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/domain/tasks"
)

type (
	Task             = tasks.Task
	TaskSchedule     = tasks.TaskSchedule
	Submission       = tasks.Submission
	ExtensionRequest = tasks.ExtensionRequest

	ScheduleState    = tasks.State
	SubmissionStatus = tasks.SubmissionStatus
	ExtensionStatus  = tasks.ExtensionStatus
	ContentField     = tasks.ContentField

	JobRun   = jobs.JobRun
	JobLease = jobs.JobLease
)

const (
	ScheduleLocked    = tasks.StateLocked
	ScheduleUnlocked  = tasks.StateUnlocked
	ScheduleDelayed   = tasks.StateDelayed
	ScheduleSubmitted = tasks.StateSubmitted

	SubmissionPending  = tasks.SubmissionPending
	SubmissionApproved = tasks.SubmissionApproved
	SubmissionRejected = tasks.SubmissionRejected
	SubmissionDelayed  = tasks.SubmissionDelayed

	ExtensionPending  = tasks.ExtensionPending
	ExtensionApproved = tasks.ExtensionApproved
	ExtensionRejected = tasks.ExtensionRejected

	JobStatusQueued    = jobs.StatusQueued
	JobStatusRunning   = jobs.StatusRunning
	JobStatusSucceeded = jobs.StatusSucceeded
	JobStatusFailed    = jobs.StatusFailed
)
