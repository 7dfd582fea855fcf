package models

import (
	"time"

	"github.com/google/uuid"
)

// Intake is one logged water-drinking event. GoalID is fixed at
// creation time and never re-bucketed, even if the day rolls over
// before the record is committed. ExternalSampleID is set only after
// a successful mirror into the health vault.
type Intake struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	GoalID           uint       `gorm:"not null;index" json:"goal_id"`
	QuantityOz       float64    `gorm:"not null" json:"quantity_oz"`
	ExternalSampleID *uuid.UUID `json:"external_sample_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}
