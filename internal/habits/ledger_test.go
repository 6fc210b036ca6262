package habits

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lucasreed/habitloop-api/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Habit{}, &models.HabitCompletion{}))
	return db
}

func newTestHabit(t *testing.T, db *gorm.DB) *models.Habit {
	t.Helper()

	habit := models.Habit{
		UserID:   uuid.New(),
		Title:    "read",
		IsActive: true,
	}
	require.NoError(t, db.Create(&habit).Error)
	return &habit
}

func TestRecordCompletion(t *testing.T) {
	db := newTestDB(t)
	habit := newTestHabit(t, db)
	today := Today()

	completion, err := RecordCompletion(db, habit, today)
	require.NoError(t, err)
	assert.Equal(t, habit.ID, completion.HabitID)
	assert.True(t, completion.CompletedDate.Equal(today))
	assert.Equal(t, today.Year(), completion.Year)
	assert.Equal(t, int(today.Month()), completion.Month)
	_, wantWeek := today.ISOWeek()
	assert.Equal(t, wantWeek, completion.Week)

	var count int64
	require.NoError(t, db.Model(&models.HabitCompletion{}).Where("habit_id = ?", habit.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRecordCompletionTwiceSameDay(t *testing.T) {
	db := newTestDB(t)
	habit := newTestHabit(t, db)
	today := Today()

	_, err := RecordCompletion(db, habit, today)
	require.NoError(t, err)
	require.NoError(t, ReloadCompletions(db, habit))

	_, err = RecordCompletion(db, habit, today)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestRecordCompletionRace(t *testing.T) {
	db := newTestDB(t)
	habit := newTestHabit(t, db)
	today := Today()

	_, err := RecordCompletion(db, habit, today)
	require.NoError(t, err)

	// A second caller holding a stale completion list misses the pre-check
	// and runs into the unique index instead. Same error, one stored row.
	stale := *habit
	stale.Completions = nil
	_, err = RecordCompletion(db, &stale, today)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)

	var count int64
	require.NoError(t, db.Model(&models.HabitCompletion{}).Where("habit_id = ?", habit.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCompleteUncompleteCompleteCycle(t *testing.T) {
	db := newTestDB(t)
	habit := newTestHabit(t, db)
	today := Today()

	_, err := RecordCompletion(db, habit, today)
	require.NoError(t, err)
	require.NoError(t, ReloadCompletions(db, habit))

	require.NoError(t, RemoveCompletion(db, habit, today))
	require.NoError(t, ReloadCompletions(db, habit))
	assert.Empty(t, habit.Completions)

	// The date is free again after removal
	_, err = RecordCompletion(db, habit, today)
	require.NoError(t, err)
}

func TestRemoveCompletionWhenNotCompleted(t *testing.T) {
	db := newTestDB(t)
	habit := newTestHabit(t, db)

	err := RemoveCompletion(db, habit, Today())
	assert.ErrorIs(t, err, ErrNotCompleted)
}

func TestRemoveCompletionOnlyTargetsToday(t *testing.T) {
	db := newTestDB(t)
	habit := newTestHabit(t, db)
	today := Today()

	yesterday := models.HabitCompletion{
		HabitID:       habit.ID,
		CompletedAt:   today.AddDate(0, 0, -1).Add(10 * time.Hour),
		CompletedDate: today.AddDate(0, 0, -1),
	}
	require.NoError(t, db.Create(&yesterday).Error)
	require.NoError(t, ReloadCompletions(db, habit))

	err := RemoveCompletion(db, habit, today)
	assert.ErrorIs(t, err, ErrNotCompleted)

	var count int64
	require.NoError(t, db.Model(&models.HabitCompletion{}).Where("habit_id = ?", habit.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCompletionsSince(t *testing.T) {
	db := newTestDB(t)
	habit := newTestHabit(t, db)
	today := Today()

	for _, off := range []int{0, 3, 10} {
		date := today.AddDate(0, 0, -off)
		completion := models.HabitCompletion{
			HabitID:       habit.ID,
			CompletedAt:   date.Add(12 * time.Hour),
			CompletedDate: date,
		}
		require.NoError(t, db.Create(&completion).Error)
	}

	completions, err := CompletionsSince(db, habit.ID, today.AddDate(0, 0, -5))
	require.NoError(t, err)
	require.Len(t, completions, 2)

	// Most recent first
	assert.True(t, completions[0].CompletedDate.After(completions[1].CompletedDate))
	assert.True(t, DateOf(completions[0].CompletedDate).Equal(today))
}
