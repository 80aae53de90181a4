package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TimeSpent is the time one person spent on one task on one day.
type TimeSpent struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TaskID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_time_spent_key,priority:1" json:"task_id"`
	PersonID  uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_time_spent_key,priority:2" json:"person_id"`
	Date      datatypes.Date `gorm:"not null;uniqueIndex:idx_time_spent_key,priority:3" json:"date"`
	Duration  float64        `gorm:"not null;default:0" json:"duration"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *TimeSpent) BeforeCreate(*gorm.DB) error {
	assignID(&t.ID)
	return nil
}

// TimeSpentTotals holds every person's entry for a task plus the sum of all
// durations. It marshals flat: {"<person id>": entry, ..., "total": sum}.
type TimeSpentTotals struct {
	Entries map[uuid.UUID]TimeSpent
	Total   float64
}

func (t TimeSpentTotals) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(t.Entries)+1)
	for personID, entry := range t.Entries {
		out[personID.String()] = entry
	}
	out["total"] = t.Total
	return json.Marshal(out)
}
