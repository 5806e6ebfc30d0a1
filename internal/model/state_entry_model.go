package model

import (
	"time"

	"gorm.io/datatypes"
)

// StateEntry is one durable client storage key.
type StateEntry struct {
	Key       string         `gorm:"type:text;primaryKey"`
	Value     datatypes.JSON `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (StateEntry) TableName() string {
	return "client_state_entries"
}
