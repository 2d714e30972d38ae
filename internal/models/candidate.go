package models

import (
	"time"

	"github.com/lib/pq"
)

// CandidateStatus is the response state of one assignment offer. All
// transitions out of pending are one-way.
type CandidateStatus string

const (
	CandidateStatusPending     CandidateStatus = "pending"
	CandidateStatusAccepted    CandidateStatus = "accepted"
	CandidateStatusRejected    CandidateStatus = "rejected"
	CandidateStatusExpired     CandidateStatus = "expired"
	CandidateStatusInvalidated CandidateStatus = "invalidated"
)

// DisplayText returns the human-readable status string shown to clients.
func (s CandidateStatus) DisplayText() string {
	switch s {
	case CandidateStatusPending:
		return "Awaiting response"
	case CandidateStatusAccepted:
		return "Accepted"
	case CandidateStatusRejected:
		return "Declined"
	case CandidateStatusExpired:
		return "Expired"
	case CandidateStatusInvalidated:
		return "Superseded"
	}
	return string(s)
}

// Candidate is one developer's invitation within a batch. Within a batch at
// most one candidate ever has IsFirstAccepted set.
type Candidate struct {
	ID                   string          `db:"id" json:"id"`
	BatchID              string          `db:"batch_id" json:"batch_id"`
	ProjectID            string          `db:"project_id" json:"project_id"`
	DeveloperID          string          `db:"developer_id" json:"developer_id"`
	Level                DeveloperLevel  `db:"level" json:"level"`
	SkillIDs             pq.StringArray  `db:"skill_ids" json:"skill_ids"`
	AssignedAt           time.Time       `db:"assigned_at" json:"assigned_at"`
	AcceptanceDeadline   time.Time       `db:"acceptance_deadline" json:"acceptance_deadline"`
	ResponseStatus       CandidateStatus `db:"response_status" json:"response_status"`
	RespondedAt          *time.Time      `db:"responded_at" json:"responded_at,omitempty"`
	IsFirstAccepted      bool            `db:"is_first_accepted" json:"is_first_accepted"`
	UsualResponseMinutes int             `db:"usual_response_minutes" json:"usual_response_minutes"`
	DisplayStatus        string          `db:"display_status" json:"display_status"`
}

// CandidateDetail joins the candidate with the batch, project, and
// developer context needed to validate an accept or reject.
type CandidateDetail struct {
	Candidate
	BatchStatus          BatchStatus   `db:"batch_status" json:"batch_status"`
	ProjectStatus        ProjectStatus `db:"project_status" json:"project_status"`
	ProjectClientUserID  string        `db:"project_client_user_id" json:"project_client_user_id"`
	ProjectCurrentBatch  *string       `db:"project_current_batch_id" json:"project_current_batch_id,omitempty"`
	ContactRevealEnabled bool          `db:"contact_reveal_enabled" json:"contact_reveal_enabled"`
	DeveloperUserID      string        `db:"developer_user_id" json:"developer_user_id"`
}
