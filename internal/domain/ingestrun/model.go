package ingestrun

import (
	"time"
)

type Status string

const (
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

type Kind string

const (
	KindIngest          Kind = "ingest"
	KindPayoutMigration Kind = "payout_migration"
)

// Error types recorded in ErrorDetail.ErrorType.
const (
	ErrorTypeFetch       = "fetch_error"
	ErrorTypeMapping     = "mapping_error"
	ErrorTypeUpsert      = "upsert_error"
	ErrorTypePanic       = "panic"
	ErrorTypeMigration   = "migration_error"
	ErrorTypeBatchCommit = "batch_commit_error"
)

// ErrorDetail is a typed, contextualized summary of one failure. Stack traces
// never land here.
type ErrorDetail struct {
	ErrorType      string         `json:"error_type"`
	Message        string         `json:"message"`
	Context        map[string]any `json:"context,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
	ExternalPropID string         `json:"external_prop_id,omitempty"`
}

// Counts holds the six aggregate counters of an ingestion run.
type Counts struct {
	TotalRaw    int `json:"total_raw"`
	NewPlayers  int `json:"total_new_players"`
	NewProps    int `json:"total_new_props"`
	NewQuotes   int `json:"total_new_quotes"`
	LineChanges int `json:"total_line_changes"`
	Unchanged   int `json:"total_unchanged"`
}

// Run is one pipeline or migration execution. It is created at start,
// mutated in place and finalized at the end.
type Run struct {
	ID         int64
	PublicID   string
	Kind       Kind
	Sport      string
	Source     string
	Status     Status
	StartedAt  time.Time
	FinishedAt *time.Time
	DurationMS int64
	Counts     Counts
	Stats      map[string]int
	Errors     []ErrorDetail
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// StatusFor decides the terminal status from the error and raw counts.
func StatusFor(errorCount, totalRaw int) Status {
	switch {
	case errorCount == 0:
		return StatusSuccess
	case errorCount < totalRaw:
		return StatusPartial
	default:
		return StatusFailed
	}
}

// Finish stamps the terminal fields.
func (r *Run) Finish(status Status, at time.Time) {
	r.Status = status
	finished := at
	r.FinishedAt = &finished
	r.DurationMS = at.Sub(r.StartedAt).Milliseconds()
	r.UpdatedAt = at
}

// IsStale reports whether a running run started before cutoff.
func (r Run) IsStale(cutoff time.Time) bool {
	return r.Status == StatusRunning && r.StartedAt.Before(cutoff)
}
