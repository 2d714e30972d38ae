package dto

import "github.com/devmatch/rotation-api/internal/models"

// QuotaOverride optionally replaces the configured per-level quotas for one
// generation.
type QuotaOverride struct {
	Fresher int `json:"fresher" validate:"gte=0"`
	Mid     int `json:"mid" validate:"gte=0"`
	Expert  int `json:"expert" validate:"gte=0"`
}

// GenerateBatchRequest is the payload for batch generation and refresh.
type GenerateBatchRequest struct {
	Quotas *QuotaOverride `json:"quotas,omitempty"`
}

// BatchResult is the outcome of a successful generation or refresh.
type BatchResult struct {
	Batch      models.Batch       `json:"batch"`
	Candidates []models.Candidate `json:"candidates"`
}

// AcceptResult carries the project snapshot returned by a winning accept.
type AcceptResult struct {
	Candidate models.Candidate `json:"candidate"`
	Project   models.Project   `json:"project"`
}
