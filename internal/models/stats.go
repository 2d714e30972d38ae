package models

import "time"

// SweepResult summarizes one expiry sweep run.
type SweepResult struct {
	ExpiredCount        int64     `json:"expired_count"`
	RefreshedBatchCount int       `json:"refreshed_batch_count"`
	ProcessedAt         time.Time `json:"processed_at"`
}

// RotationStats is the per-project rotation summary served to admin
// dashboards.
type RotationStats struct {
	ProjectID           string         `json:"project_id"`
	TotalBatches        int            `json:"total_batches"`
	CurrentBatchID      *string        `json:"current_batch_id,omitempty"`
	CurrentBatchNumber  int            `json:"current_batch_number"`
	CandidatesByStatus  map[string]int `json:"candidates_by_status"`
	AcceptedDeveloperID *string        `json:"accepted_developer_id,omitempty"`
	GeneratedAt         time.Time      `json:"generated_at"`
}

// AssignmentHistoryEntry is one row of a project's exported batch and
// candidate history.
type AssignmentHistoryEntry struct {
	BatchNumber    int             `db:"batch_number" json:"batch_number"`
	BatchStatus    BatchStatus     `db:"batch_status" json:"batch_status"`
	DeveloperID    string          `db:"developer_id" json:"developer_id"`
	Level          DeveloperLevel  `db:"level" json:"level"`
	ResponseStatus CandidateStatus `db:"response_status" json:"response_status"`
	AssignedAt     time.Time       `db:"assigned_at" json:"assigned_at"`
	RespondedAt    *time.Time      `db:"responded_at" json:"responded_at,omitempty"`
}
