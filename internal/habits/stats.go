package habits

import (
	"math"
	"time"

	"github.com/lucasreed/habitloop-api/internal/models"
)

// round1 rounds half away from zero to one decimal place.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// CompletionRate is the lifetime rate: completions over days alive
// (creation day counts, hence the +1), as a percentage with one decimal.
func CompletionRate(totalCompletions int, createdAt, today time.Time) float64 {
	days := int(DateOf(today).Sub(DateOf(createdAt)).Hours()/24) + 1
	if days <= 0 {
		return 0
	}
	return round1(float64(totalCompletions) / float64(days) * 100)
}

// LastCompletedAt returns the most recent completion instant, or nil.
func LastCompletedAt(completions []models.HabitCompletion) *time.Time {
	var last *time.Time
	for i := range completions {
		if last == nil || completions[i].CompletedAt.After(*last) {
			last = &completions[i].CompletedAt
		}
	}
	return last
}

// CompletedOn reports whether a completion exists for the given date.
func CompletedOn(completions []models.HabitCompletion, date time.Time) bool {
	for _, c := range completions {
		if sameDay(c.CompletedDate, date) {
			return true
		}
	}
	return false
}

// Stats builds the windowed analytics for a habit: a day-by-day completion
// calendar covering the last `days` days plus today (days+1 entries,
// ascending), the windowed completion rate, and the current streak.
//
// The windowed rate divides by `days`, not by the number of calendar
// entries. Today is effectively a bonus day on top of the window, and
// clients have grown to depend on the resulting numbers; don't change the
// denominator.
//
// LongestStreak is not tracked and is always 0.
func Stats(habit *models.Habit, days int, today time.Time) models.HabitStatsResponse {
	today = DateOf(today)
	start := today.AddDate(0, 0, -days)

	inWindow := make(map[time.Time]bool)
	for _, c := range habit.Completions {
		d := DateOf(c.CompletedDate)
		if !d.Before(start) && !d.After(today) {
			inWindow[d] = true
		}
	}

	history := []models.DailyCompletion{}
	for date := start; !date.After(today); date = date.AddDate(0, 0, 1) {
		history = append(history, models.DailyCompletion{
			Date:      date.Format("2006-01-02"),
			Completed: inWindow[date],
		})
	}

	rate := 0.0
	if days > 0 {
		rate = round1(float64(len(inWindow)) / float64(days) * 100)
	}

	return models.HabitStatsResponse{
		HabitID:                 habit.ID,
		HabitTitle:              habit.Title,
		TotalCompletions:        len(habit.Completions),
		CurrentStreak:           CurrentStreak(habit.Completions, today),
		LongestStreak:           0,
		CompletionRateLastMonth: rate,
		CompletionHistory:       history,
	}
}
