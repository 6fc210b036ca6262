package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Habit struct {
	ID          uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID         `json:"userId" gorm:"type:uuid;index;not null"`
	Title       string            `json:"title" gorm:"not null"`
	IsActive    bool              `json:"isActive" gorm:"default:true"`
	SortOrder   int               `json:"sortOrder" gorm:"not null;default:0"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt    `json:"-" gorm:"index"`
	Completions []HabitCompletion `json:"completions,omitempty" gorm:"foreignKey:HabitID"`
}

func (h *Habit) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// Habit DTOs
type CreateHabitRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

type UpdateHabitRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	IsActive *bool  `json:"isActive"`
}

type ReorderHabitsRequest struct {
	HabitIDs []uuid.UUID `json:"habitIds" validate:"required"`
}

// HabitResponse combines the stored habit fields with analytics derived
// from its completion set. Never persisted, assembled on every read.
type HabitResponse struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	IsActive         bool       `json:"isActive"`
	SortOrder        int        `json:"sortOrder"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	IsCompletedToday bool       `json:"isCompletedToday"`
	LastCompletedAt  *time.Time `json:"lastCompletedAt"`
	CurrentStreak    int        `json:"currentStreak"`
	TotalCompletions int        `json:"totalCompletions"`
	CompletionRate   float64    `json:"completionRate"`
}

type HabitStatsResponse struct {
	HabitID                 uuid.UUID         `json:"habitId"`
	HabitTitle              string            `json:"habitTitle"`
	TotalCompletions        int               `json:"totalCompletions"`
	CurrentStreak           int               `json:"currentStreak"`
	LongestStreak           int               `json:"longestStreak"`
	CompletionRateLastMonth float64           `json:"completionRateLastMonth"`
	CompletionHistory       []DailyCompletion `json:"completionHistory"`
}

type DailyCompletion struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Completed bool   `json:"completed"`
}
