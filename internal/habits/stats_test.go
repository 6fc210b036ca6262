package habits

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasreed/habitloop-api/internal/models"
)

func TestCompletionRate(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		daysAgo int // habit age: created daysAgo days before today
		want    float64
	}{
		{"no completions", 0, 10, 0},
		{"created today, completed today", 1, 0, 100},
		{"one of eight days", 1, 7, 12.5},
		{"half boundary rounds away from zero", 1, 15, 6.3},   // 6.25
		{"half boundary higher up", 7, 15, 43.8},              // 43.75
		{"repeating decimal truncates to one place", 1, 2, 33.3},
		{"two thirds", 2, 2, 66.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			createdAt := testToday.AddDate(0, 0, -tt.daysAgo)
			assert.Equal(t, tt.want, CompletionRate(tt.total, createdAt, testToday))
		})
	}
}

func TestCompletionRateCountsCreationDay(t *testing.T) {
	// 3 completions over a 3-day-old habit: denominator is 4 (creation day
	// counts), so 75%, not 100%.
	createdAt := testToday.AddDate(0, 0, -3)
	assert.Equal(t, 75.0, CompletionRate(3, createdAt, testToday))
}

func TestStatsHistoryWindow(t *testing.T) {
	habit := &models.Habit{
		Title:       "drink water",
		CreatedAt:   testToday.AddDate(0, 0, -20),
		Completions: completionsAt(testToday, 0, 2),
	}

	stats := Stats(habit, 3, testToday)

	// days=3 yields 4 entries, today-3 through today, ascending
	require.Len(t, stats.CompletionHistory, 4)
	assert.Equal(t, "2026-08-28", stats.CompletionHistory[0].Date)
	assert.Equal(t, "2026-08-31", stats.CompletionHistory[3].Date)

	completed := map[string]bool{}
	for _, day := range stats.CompletionHistory {
		completed[day.Date] = day.Completed
	}
	assert.True(t, completed["2026-08-31"])
	assert.True(t, completed["2026-08-29"])
	assert.False(t, completed["2026-08-30"])
	assert.False(t, completed["2026-08-28"])
}

func TestStatsWindowedRateDenominator(t *testing.T) {
	habit := &models.Habit{
		CreatedAt:   testToday.AddDate(0, 0, -20),
		Completions: completionsAt(testToday, 0, 2),
	}

	stats := Stats(habit, 3, testToday)

	// 2 completed days over a denominator of 3 (not the 4 calendar
	// entries): 66.666... -> 66.7
	assert.Equal(t, 66.7, stats.CompletionRateLastMonth)
}

func TestStatsExcludesCompletionsOutsideWindow(t *testing.T) {
	habit := &models.Habit{
		CreatedAt:   testToday.AddDate(0, 0, -20),
		Completions: completionsAt(testToday, 0, 10),
	}

	stats := Stats(habit, 3, testToday)

	assert.Equal(t, 33.3, stats.CompletionRateLastMonth)
	// totalCompletions is lifetime, not windowed
	assert.Equal(t, 2, stats.TotalCompletions)
}

func TestStatsLongestStreakIsNotTracked(t *testing.T) {
	habit := &models.Habit{
		CreatedAt:   testToday.AddDate(0, 0, -20),
		Completions: completionsAt(testToday, 0, 1, 2, 3),
	}

	stats := Stats(habit, 30, testToday)

	assert.Equal(t, 4, stats.CurrentStreak)
	assert.Equal(t, 0, stats.LongestStreak)
}

func TestStatsZeroDays(t *testing.T) {
	habit := &models.Habit{
		CreatedAt:   testToday,
		Completions: completionsAt(testToday, 0),
	}

	stats := Stats(habit, 0, testToday)

	require.Len(t, stats.CompletionHistory, 1)
	assert.Equal(t, "2026-08-31", stats.CompletionHistory[0].Date)
	assert.True(t, stats.CompletionHistory[0].Completed)
	assert.Equal(t, 0.0, stats.CompletionRateLastMonth)
}

func TestStatsNoCompletions(t *testing.T) {
	habit := &models.Habit{CreatedAt: testToday.AddDate(0, 0, -5)}

	stats := Stats(habit, 30, testToday)

	assert.Equal(t, 0, stats.TotalCompletions)
	assert.Equal(t, 0, stats.CurrentStreak)
	assert.Equal(t, 0.0, stats.CompletionRateLastMonth)
	assert.Len(t, stats.CompletionHistory, 31)
	for _, day := range stats.CompletionHistory {
		assert.False(t, day.Completed)
	}
}

func TestLastCompletedAt(t *testing.T) {
	assert.Nil(t, LastCompletedAt(nil))

	first := testToday.Add(8 * time.Hour)
	second := testToday.Add(20 * time.Hour)
	completions := []models.HabitCompletion{
		{CompletedAt: first},
		{CompletedAt: second},
	}

	got := LastCompletedAt(completions)
	require.NotNil(t, got)
	assert.True(t, got.Equal(second))
}

func TestCompletedOn(t *testing.T) {
	completions := completionsAt(testToday, 1)
	assert.False(t, CompletedOn(completions, testToday))
	assert.True(t, CompletedOn(completions, testToday.AddDate(0, 0, -1)))
}
