package models

import "time"

// DeveloperLevel is the seniority tier a developer belongs to.
type DeveloperLevel string

const (
	LevelFresher DeveloperLevel = "FRESHER"
	LevelMid     DeveloperLevel = "MID"
	LevelExpert  DeveloperLevel = "EXPERT"
)

// Levels returns all tiers ordered lowest to highest.
func Levels() []DeveloperLevel {
	return []DeveloperLevel{LevelFresher, LevelMid, LevelExpert}
}

// Priority ranks levels for deduplication; higher wins.
func (l DeveloperLevel) Priority() int {
	switch l {
	case LevelExpert:
		return 3
	case LevelMid:
		return 2
	case LevelFresher:
		return 1
	}
	return 0
}

// DeveloperAvailability captures whether a developer can take new offers.
type DeveloperAvailability string

const (
	AvailabilityAvailable DeveloperAvailability = "available"
	AvailabilityChecking  DeveloperAvailability = "checking"
	AvailabilityBusy      DeveloperAvailability = "busy"
)

// Developer is an external entity owned by the main platform; this service
// only reads it when assembling candidate pools.
type Developer struct {
	ID                   string                `db:"id" json:"id"`
	UserID               string                `db:"user_id" json:"user_id"`
	Level                DeveloperLevel        `db:"level" json:"level"`
	Approved             bool                  `db:"approved" json:"approved"`
	Availability         DeveloperAvailability `db:"availability" json:"availability"`
	ContactVerified      bool                  `db:"contact_verified" json:"contact_verified"`
	UsualResponseMinutes int                   `db:"usual_response_minutes" json:"usual_response_minutes"`
	CreatedAt            time.Time             `db:"created_at" json:"created_at"`
}

// PoolCandidate is one eligible developer inside a selection pool, annotated
// with fairness aggregates over the developer's five most recent responses.
type PoolCandidate struct {
	DeveloperID          string         `db:"developer_id" json:"developer_id"`
	UserID               string         `db:"user_id" json:"user_id"`
	Level                DeveloperLevel `db:"level" json:"level"`
	SkillIDs             []string       `json:"skill_ids"`
	LastRespondedAt      *time.Time     `db:"last_responded_at" json:"last_responded_at,omitempty"`
	RecentAcceptCount    int            `db:"recent_accepts" json:"recent_accept_count"`
	UsualResponseMinutes int            `db:"usual_response_minutes" json:"usual_response_minutes"`
}

// Quotas is the target candidate count per level for one batch.
type Quotas struct {
	Fresher int `json:"fresher"`
	Mid     int `json:"mid"`
	Expert  int `json:"expert"`
}

// Total is the maximum batch size the quotas allow.
func (q Quotas) Total() int {
	return q.Fresher + q.Mid + q.Expert
}

// ForLevel returns the quota configured for the given tier.
func (q Quotas) ForLevel(level DeveloperLevel) int {
	switch level {
	case LevelFresher:
		return q.Fresher
	case LevelMid:
		return q.Mid
	case LevelExpert:
		return q.Expert
	}
	return 0
}
