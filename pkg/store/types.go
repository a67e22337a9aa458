package store

import (
	"time"
)

// RunStatus is the lifecycle state of a pipeline run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one recorded pipeline execution. Counters are zero until the run
// finishes.
type Run struct {
	RunID           string     `json:"run_id"`
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
	InputPath       string     `json:"input_path"`
	OutputPath      string     `json:"output_path"`
	Threshold       int        `json:"threshold"`
	Workers         int        `json:"workers"`
	Vertices        int        `json:"vertices"`
	Edges           int        `json:"edges"`
	Recommendations int        `json:"recommendations"`
	Status          RunStatus  `json:"status"`
	Error           string     `json:"error,omitempty"`
}

// StoredRecommendation is one persisted recommendation record.
type StoredRecommendation struct {
	RunID       string `json:"run_id"`
	SourceID    string `json:"source_id"`
	CandidateID string `json:"candidate_id"`
}
