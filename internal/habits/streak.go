package habits

import (
	"sort"
	"time"

	"github.com/lucasreed/habitloop-api/internal/models"
)

// CurrentStreak counts consecutive completed days ending today. A habit
// completed yesterday but not yet today still counts (today isn't over),
// so the walk accepts either the expected date or the day before it. The
// first gap longer than one day ends the streak.
func CurrentStreak(completions []models.HabitCompletion, today time.Time) int {
	if len(completions) == 0 {
		return 0
	}

	seen := make(map[time.Time]bool, len(completions))
	dates := make([]time.Time, 0, len(completions))
	for _, c := range completions {
		d := DateOf(c.CompletedDate)
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].After(dates[j])
	})

	streak := 0
	expected := DateOf(today)

	for _, date := range dates {
		if date.Equal(expected) || date.Equal(expected.AddDate(0, 0, -1)) {
			streak++
			expected = date.AddDate(0, 0, -1)
		} else {
			break
		}
	}

	return streak
}
