package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HabitCompletion is one row of the completion ledger: a habit was done on
// a calendar date. At most one row may exist per (habit, date); the unique
// index is the source of truth for that invariant. Rows are hard-deleted on
// uncomplete so the date can be completed again later.
type HabitCompletion struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	HabitID       uuid.UUID `json:"habitId" gorm:"type:uuid;not null;uniqueIndex:idx_completions_habit_date;index:idx_completions_habit_year_month;index:idx_completions_habit_year_week"`
	CompletedAt   time.Time `json:"completedAt" gorm:"not null"`
	CompletedDate time.Time `json:"-" gorm:"type:date;not null;uniqueIndex:idx_completions_habit_date"`
	Year          int       `json:"-" gorm:"not null;index:idx_completions_habit_year_month;index:idx_completions_habit_year_week"`
	Month         int       `json:"-" gorm:"not null;index:idx_completions_habit_year_month"`
	Week          int       `json:"-" gorm:"not null;index:idx_completions_habit_year_week"`
}

func (hc *HabitCompletion) BeforeCreate(tx *gorm.DB) error {
	if hc.ID == uuid.Nil {
		hc.ID = uuid.New()
	}
	return nil
}

type HabitCompletionResponse struct {
	ID            uuid.UUID `json:"id"`
	HabitID       uuid.UUID `json:"habitId"`
	CompletedAt   time.Time `json:"completedAt"`
	CompletedDate string    `json:"completedDate"` // YYYY-MM-DD
}
