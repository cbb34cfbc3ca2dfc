package model

import "time"

// RunStatus represents the terminal-state machine of an ingestion run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCanceled  RunStatus = "canceled"
)

// DocumentCounts tracks per-run extraction progress. Both processed and
// failed are monotonically non-decreasing across persisted snapshots.
type DocumentCounts struct {
	Total     int `json:"total"`
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// StepState is the run's persisted checkpoint record. It is an observability
// record, not a resume point: a retried run restarts the whole sequence.
type StepState struct {
	CurrentStep    string         `json:"currentStep"`
	CompletedSteps []string       `json:"completedSteps"`
	DocumentCounts DocumentCounts `json:"documentCounts"`
	LastUpdated    time.Time      `json:"lastUpdated"`
}

// IngestionRun is one execution attempt of the full pipeline for one
// investor's document set. Terminal fields are set once, by finalize or by
// the orchestrator's failure handler, and are immutable thereafter.
type IngestionRun struct {
	ID         string     `json:"id"`
	InvestorID string     `json:"investor_id"`
	UserID     string     `json:"user_id"`
	Status     RunStatus  `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	StepState  StepState  `json:"step_state"`
	Error      string     `json:"error,omitempty"`
}
