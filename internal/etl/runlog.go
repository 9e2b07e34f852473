package etl

import "time"

// Run log statuses.
const (
	RunStatusSuccess = "success"
	RunStatusError   = "error"
)

// RunLog records the outcome of one export run.
type RunLog struct {
	ID             string    `json:"id"`
	StartedAt      time.Time `json:"startedAt"`
	FinishedAt     time.Time `json:"finishedAt"`
	Status         string    `json:"status"`
	SourceType     string    `json:"sourceType"`
	Offset         int64     `json:"offset"`
	TestMode       bool      `json:"testMode"`
	FilePath       string    `json:"filePath"`
	RecordsRead    int       `json:"recordsRead"`
	RecordsSkipped int       `json:"recordsSkipped"`
	RowsWritten    int       `json:"rowsWritten"`
	Staged         bool      `json:"staged"`
	Error          string    `json:"error,omitempty"`
}
