package models

import "time"

// BatchStatus is the lifecycle state of a candidate batch.
type BatchStatus string

const (
	BatchStatusActive    BatchStatus = "active"
	BatchStatusCompleted BatchStatus = "completed"
	BatchStatusExpired   BatchStatus = "expired"
	BatchStatusReplaced  BatchStatus = "replaced"
)

// Batch groups the candidate invitations generated together for one
// project. Batch numbers increase monotonically per project starting at 1.
// The candidate set is immutable once created; a refresh creates a new
// batch instead of mutating this one.
type Batch struct {
	ID           string      `db:"id" json:"id"`
	ProjectID    string      `db:"project_id" json:"project_id"`
	BatchNumber  int         `db:"batch_number" json:"batch_number"`
	Status       BatchStatus `db:"status" json:"status"`
	QuotaFresher int         `db:"quota_fresher" json:"quota_fresher"`
	QuotaMid     int         `db:"quota_mid" json:"quota_mid"`
	QuotaExpert  int         `db:"quota_expert" json:"quota_expert"`
	Reason       *string     `db:"reason" json:"reason,omitempty"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}
