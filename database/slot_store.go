package database

import (
	"time"

	"catering-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SlotStore keeps cart ledgers in the cart_slots table, one row per key.
type SlotStore struct {
	DB *gorm.DB
}

func NewSlotStore(db *gorm.DB) *SlotStore {
	return &SlotStore{DB: db}
}

func (s *SlotStore) Get(key string) (string, bool, error) {
	var slots []models.CartSlot
	result := s.DB.Where(`"key" = ?`, key).Limit(1).Find(&slots)
	if result.Error != nil {
		return "", false, result.Error
	}
	if len(slots) == 0 {
		return "", false, nil
	}
	return slots[0].Value, true, nil
}

// Set inserts or overwrites the slot.
func (s *SlotStore) Set(key, value string) error {
	slot := models.CartSlot{Key: key, Value: value, UpdatedAt: time.Now()}
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&slot).Error
}

// PurgeBefore deletes slots untouched since cutoff and returns how many went.
func (s *SlotStore) PurgeBefore(cutoff time.Time) (int64, error) {
	result := s.DB.Where("updated_at < ?", cutoff).Delete(&models.CartSlot{})
	return result.RowsAffected, result.Error
}
