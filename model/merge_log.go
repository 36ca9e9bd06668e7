package model

import (
	"time"

	"gorm.io/datatypes"
)

// Merge outcomes recorded per entity.
const (
	OutcomeApplied = "applied"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// MergeLog records what a pipeline run did to one catalog entity.
type MergeLog struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID     string         `gorm:"size:64;index:idx_merge_run;not null" json:"run_id"`
	Stage     string         `gorm:"size:32;not null" json:"stage"`
	EntityID  string         `gorm:"size:64;index:idx_merge_entity" json:"entity_id"`
	Outcome   string         `gorm:"size:16;not null" json:"outcome"`
	Error     string         `gorm:"type:text" json:"error,omitempty"`
	Detail    datatypes.JSON `json:"detail,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}
