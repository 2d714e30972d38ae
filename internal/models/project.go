package models

import (
	"time"

	"github.com/lib/pq"
)

// ProjectStatus tracks a project through its assignment lifecycle.
type ProjectStatus string

const (
	ProjectStatusDraft      ProjectStatus = "draft"
	ProjectStatusSubmitted  ProjectStatus = "submitted"
	ProjectStatusAssigning  ProjectStatus = "assigning"
	ProjectStatusAccepted   ProjectStatus = "accepted"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusCanceled   ProjectStatus = "canceled"
)

// Project is the unit of work clients post. At most one batch is active for
// a project at a time; contact reveal flips exactly once, at first
// acceptance.
type Project struct {
	ID                         string         `db:"id" json:"id"`
	ClientUserID               string         `db:"client_user_id" json:"client_user_id"`
	Title                      string         `db:"title" json:"title"`
	Status                     ProjectStatus  `db:"status" json:"status"`
	RequiredSkillIDs           pq.StringArray `db:"required_skill_ids" json:"required_skill_ids"`
	CurrentBatchID             *string        `db:"current_batch_id" json:"current_batch_id,omitempty"`
	ContactRevealEnabled       bool           `db:"contact_reveal_enabled" json:"contact_reveal_enabled"`
	ContactRevealedDeveloperID *string        `db:"contact_revealed_developer_id" json:"contact_revealed_developer_id,omitempty"`
	CreatedAt                  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt                  time.Time      `db:"updated_at" json:"updated_at"`
}

// CanGenerateBatch reports whether a new candidate batch may be generated
// for the project in its current state.
func (p *Project) CanGenerateBatch() bool {
	return p.Status == ProjectStatusSubmitted || p.Status == ProjectStatusAssigning
}
