package models

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus represents the status of a pipeline run
type RunStatus string

const (
	RunStatusQueued     RunStatus = "queued"
	RunStatusProcessing RunStatus = "processing"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
)

// RunSummary reports the outcome of one source over the catalog
type RunSummary struct {
	Source      string        `json:"source"`
	Products    int           `json:"products"`
	Pages       int           `json:"pages,omitempty"`
	Updated     int           `json:"updated"`
	NoData      int           `json:"no_data"`
	FetchErrors int           `json:"fetch_errors"`
	MatchMisses int           `json:"match_misses"`
	StoreErrors int           `json:"store_errors"`
	Duration    time.Duration `json:"duration"`
}

// Run represents a queued or executed pipeline run over one or more sources
type Run struct {
	ID          string       `json:"id"`
	Sources     []string     `json:"sources"`
	Status      RunStatus    `json:"status"`
	Summaries   []RunSummary `json:"summaries,omitempty"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	StartedAt   *time.Time   `json:"started_at,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

// NewRun creates a queued run. Empty sources means every enabled source.
func NewRun(sources []string) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Sources:   sources,
		Status:    RunStatusQueued,
		CreatedAt: time.Now(),
	}
}

// Start marks the run as processing
func (r *Run) Start() {
	r.Status = RunStatusProcessing
	now := time.Now()
	r.StartedAt = &now
}

// Complete marks the run as completed with its summaries
func (r *Run) Complete(summaries []RunSummary) {
	r.Status = RunStatusCompleted
	r.Summaries = summaries
	now := time.Now()
	r.CompletedAt = &now
}

// Fail marks the run as failed, keeping any partial summaries
func (r *Run) Fail(summaries []RunSummary, err error) {
	r.Status = RunStatusFailed
	r.Summaries = summaries
	r.Error = err.Error()
	now := time.Now()
	r.CompletedAt = &now
}

// IsDone returns true once the run has completed or failed
func (r *Run) IsDone() bool {
	return r.Status == RunStatusCompleted || r.Status == RunStatusFailed
}
