package model

import "time"

// JobRunStatus describes how a job finished.
type JobRunStatus string

var (
	JobRunSucceeded JobRunStatus = "succeeded"
	JobRunCanceled  JobRunStatus = "canceled"
	JobRunFailed    JobRunStatus = "failed"
)

// JobRun is a statistics row describing one finished job.
type JobRun struct {
	Layer      Layer
	Key        string
	Position   uint64
	Phase      string
	Attempts   uint32
	Status     JobRunStatus
	Duration   time.Duration
	FinishedAt time.Time
}
