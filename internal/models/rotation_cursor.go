package models

import "time"

// RotationCursor remembers the last developer offered for a (skill, level)
// pair so repeated generations rotate fairly through the pool. Cursors are
// written only after the owning batch committed; a lost cursor update
// degrades rotation quality but never correctness.
type RotationCursor struct {
	SkillID         string         `db:"skill_id" json:"skill_id"`
	Level           DeveloperLevel `db:"level" json:"level"`
	LastDeveloperID string         `db:"last_developer_id" json:"last_developer_id"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}
