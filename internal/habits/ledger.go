package habits

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lucasreed/habitloop-api/internal/models"
)

var (
	// ErrAlreadyCompleted: a completion already exists for (habit, today).
	ErrAlreadyCompleted = errors.New("habit already completed today")
	// ErrNotCompleted: no completion exists for (habit, today).
	ErrNotCompleted = errors.New("habit not completed today")
	// ErrInvalidIDs: a reorder request does not name exactly the caller's habits.
	ErrInvalidIDs = errors.New("invalid habit ids")
)

// RecordCompletion appends today's completion event for the habit. The
// habit must be loaded with its completions: they serve as a cheap
// pre-check, while the unique index on (habit_id, completed_date) is the
// real guard. Two concurrent calls race to insert and the loser's
// constraint violation comes back as ErrAlreadyCompleted.
func RecordCompletion(db *gorm.DB, habit *models.Habit, today time.Time) (*models.HabitCompletion, error) {
	today = DateOf(today)

	if CompletedOn(habit.Completions, today) {
		return nil, ErrAlreadyCompleted
	}

	now := time.Now().UTC()
	_, week := today.ISOWeek()
	completion := models.HabitCompletion{
		HabitID:       habit.ID,
		CompletedAt:   now,
		CompletedDate: today,
		Year:          today.Year(),
		Month:         int(today.Month()),
		Week:          week,
	}

	if err := db.Create(&completion).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyCompleted
		}
		return nil, err
	}

	return &completion, nil
}

// RemoveCompletion deletes today's completion event, if present. Only
// today's event can be removed; history is append-only.
func RemoveCompletion(db *gorm.DB, habit *models.Habit, today time.Time) error {
	today = DateOf(today)

	var target *models.HabitCompletion
	for i := range habit.Completions {
		if sameDay(habit.Completions[i].CompletedDate, today) {
			target = &habit.Completions[i]
			break
		}
	}
	if target == nil {
		return ErrNotCompleted
	}

	return db.Delete(target).Error
}

// CompletionsSince lists a habit's completion events on or after the given
// date, most recent first.
func CompletionsSince(db *gorm.DB, habitID uuid.UUID, since time.Time) ([]models.HabitCompletion, error) {
	var completions []models.HabitCompletion
	err := db.Where("habit_id = ? AND completed_date >= ?", habitID, DateOf(since)).
		Order("completed_date DESC").
		Find(&completions).Error
	return completions, err
}

// ReloadCompletions refreshes the habit's completion list from storage.
// The ledger never mutates the in-memory list itself; storage is the
// single source of truth and callers re-read after every write.
func ReloadCompletions(db *gorm.DB, habit *models.Habit) error {
	habit.Completions = nil
	return db.Where("habit_id = ?", habit.ID).
		Order("completed_date DESC").
		Find(&habit.Completions).Error
}
