package models

// Pipeline stage names, in execution order.
const (
	StageCOScores      = "co_scores"
	StageCOAttainment  = "co_attainment"
	StageFinalCO       = "final_co_attainment"
	StagePOAttainment  = "po_attainment"
	StageOverallScores = "overall_scores"
)

// Stage completion states.
const (
	StageStatusCompleted = "completed"
	StageStatusFailed    = "failed"
	StageStatusSkipped   = "skipped"
)

// StageResult records the outcome of one pipeline stage.
type StageResult struct {
	Stage  string `json:"stage"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// PipelineResult is the outcome of a full calculation run. Stage statuses are
// reported even on failure so callers can see how far the run got before the
// transaction rolled back.
type PipelineResult struct {
	Success  bool          `json:"success"`
	Message  string        `json:"message"`
	CourseID string        `json:"course_id"`
	Stages   []StageResult `json:"stages"`
}

// IngestResult summarises one marksheet ingestion batch. Per-row problems are
// recorded as warnings while the batch continues.
type IngestResult struct {
	Accepted int      `json:"accepted"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings,omitempty"`
}
