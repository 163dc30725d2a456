package model

import "time"

// CompletedEntry records one successfully retrieved work item. The source URL
// doubles as the entry key; StoragePath names the verified artifact on disk.
type CompletedEntry struct {
	SourceURL   string    `json:"url"`
	StoragePath string    `json:"storage_path"`
	CompletedAt time.Time `json:"completed_at"`
}

// FailureEntry records the most recent failed attempt for a source URL.
// Repeated failures for the same URL update the entry in place: RetryCount
// increments, LastAttemptAt refreshes, and the message/kind/step describe the
// latest attempt.
type FailureEntry struct {
	Title         string    `json:"title,omitempty"`
	SourceURL     string    `json:"url"`
	ArtifactURL   string    `json:"artifact_url,omitempty"`
	ErrorKind     ErrorKind `json:"error_kind"`
	ErrorMessage  string    `json:"error_message"`
	RetryCount    int       `json:"retry_count"`
	LastAttemptAt time.Time `json:"last_attempt_at"`
	Step          string    `json:"step,omitempty"`
}

// Pipeline step names recorded on failure entries.
const (
	StepPageLoad = "page_load"
	StepLogin    = "login"
	StepLocate   = "locate"
	StepDownload = "download"
	StepVerify   = "verify"
)

// LedgerStats aggregates the failure store for the stats command.
type LedgerStats struct {
	Completed      int
	Failed         int
	ByErrorKind    map[ErrorKind]int
	RetryHistogram map[int]int
	Oldest         time.Time
	Newest         time.Time
}
