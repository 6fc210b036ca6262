package habits

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lucasreed/habitloop-api/internal/models"
)

// NextSortOrder returns the sort position for a user's next habit: one past
// the current maximum, 0 for the first habit.
func NextSortOrder(db *gorm.DB, userID uuid.UUID) (int, error) {
	maxSort := -1
	err := db.Model(&models.Habit{}).
		Where("user_id = ?", userID).
		Select("COALESCE(MAX(sort_order), -1)").
		Scan(&maxSort).Error
	if err != nil {
		return 0, err
	}
	return maxSort + 1, nil
}

// Reorder assigns each habit the 0-based position of its id in the request,
// inside a single transaction so a partial reorder is never observable.
// The id list must name every habit the user owns, exactly once each;
// anything else (a foreign id, a duplicate, an omission) is ErrInvalidIDs
// and nothing is written.
func Reorder(db *gorm.DB, userID uuid.UUID, habitIDs []uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var habits []models.Habit
		if err := tx.Where("user_id = ? AND id IN ?", userID, habitIDs).Find(&habits).Error; err != nil {
			return err
		}

		var total int64
		if err := tx.Model(&models.Habit{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
			return err
		}

		if len(habits) != len(habitIDs) || int64(len(habitIDs)) != total {
			return ErrInvalidIDs
		}

		now := time.Now().UTC()
		for i, id := range habitIDs {
			err := tx.Model(&models.Habit{}).
				Where("id = ?", id).
				Updates(map[string]interface{}{
					"sort_order": i,
					"updated_at": now,
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
