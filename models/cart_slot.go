package models

import "time"

// CartSlot holds one serialised cart under its storage key.
type CartSlot struct {
	Key       string    `gorm:"primaryKey;size:191" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
