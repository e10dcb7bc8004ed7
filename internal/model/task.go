package model

import "time"

// TaskStatus is the lifecycle state of an analysis run. Transitions are
// monotonic: pending → running → completed | error.
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusRunning   TaskStatus = "running"
	StatusCompleted TaskStatus = "completed"
	StatusError     TaskStatus = "error"
)

// Terminal reports whether the status admits no further transitions.
func (s TaskStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// AnalysisMode selects how much external context the relevance analysis
// feeds the model.
type AnalysisMode string

const (
	// ModeFull fetches reference metadata and open-access full text.
	ModeFull AnalysisMode = "full"
	// ModeQuick fetches reference title and abstract only.
	ModeQuick AnalysisMode = "quick"
	// ModeSubjective sends no external context; the model judges from the
	// reference entry and the citation's surrounding text alone.
	ModeSubjective AnalysisMode = "subjective"
)

// Valid reports whether the mode is one of the supported modes.
func (m AnalysisMode) Valid() bool {
	switch m {
	case ModeFull, ModeQuick, ModeSubjective:
		return true
	}
	return false
}

// Progress carries the monotonically non-decreasing counters of a running
// analysis.
type Progress struct {
	Processed  int `json:"processed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// AnalysisResult is the artifact of a completed task: the tracked problem
// set and the annotated report markup.
type AnalysisResult struct {
	Problems     []Problem    `json:"problems"`
	ReportMarkup string       `json:"report_markup"`
	Mode         AnalysisMode `json:"analysis_mode"`
	CompletedAt  time.Time    `json:"completed_at"`
}

// Task is a point-in-time snapshot of one analysis run. The lifecycle
// manager owns the mutable state; snapshots handed to callers are never
// shared with the running goroutine.
type Task struct {
	ID         string          `json:"task_id"`
	DocumentID string          `json:"document_id"`
	Mode       AnalysisMode    `json:"analysis_mode"`
	Status     TaskStatus      `json:"status"`
	Progress   Progress        `json:"progress"`
	Error      string          `json:"error,omitempty"`
	Result     *AnalysisResult `json:"-"`
	CreatedAt  time.Time       `json:"created_at"`
}
