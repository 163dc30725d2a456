package model

import "time"

// RunSummary aggregates one pipeline run for the final console report.
type RunSummary struct {
	RunID       string
	Total       int
	Succeeded   int
	Failed      int
	Skipped     int
	BytesStored int64
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Elapsed returns the wall-clock duration of the run.
func (s RunSummary) Elapsed() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// Processed returns how many work items got an attempt or a skip.
func (s RunSummary) Processed() int {
	return s.Succeeded + s.Failed + s.Skipped
}
