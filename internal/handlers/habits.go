package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/lucasreed/habitloop-api/internal/database"
	"github.com/lucasreed/habitloop-api/internal/habits"
	"github.com/lucasreed/habitloop-api/internal/middleware"
	"github.com/lucasreed/habitloop-api/internal/models"
	"github.com/lucasreed/habitloop-api/internal/services"
)

// streakMilestones are the streak lengths worth a push notification.
var streakMilestones = map[int]bool{7: true, 30: true, 100: true, 365: true}

// findOwnedHabit resolves the :id param to a habit owned by the caller.
// A habit that exists but belongs to someone else looks exactly like one
// that doesn't exist. On failure the response has already been written.
func findOwnedHabit(c *fiber.Ctx, withCompletions bool) (*models.Habit, error) {
	userID := middleware.GetUserID(c)
	habitID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid habit ID",
		})
	}

	query := database.DB.Where("id = ? AND user_id = ?", habitID, userID)
	if withCompletions {
		query = query.Preload("Completions")
	}

	var habit models.Habit
	if err := query.First(&habit).Error; err != nil {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Habit not found",
		})
	}

	return &habit, nil
}

func validateHabitTitle(title string) string {
	if title == "" {
		return "Title is required"
	}
	if utf8.RuneCountInString(title) > 200 {
		return "Title must be 200 characters or fewer"
	}
	return ""
}

// habitView assembles the response view: stored fields plus analytics
// derived from the currently loaded completion set. Derived values are
// never persisted.
func habitView(h *models.Habit) models.HabitResponse {
	today := habits.Today()
	return models.HabitResponse{
		ID:               h.ID,
		Title:            h.Title,
		IsActive:         h.IsActive,
		SortOrder:        h.SortOrder,
		CreatedAt:        h.CreatedAt,
		UpdatedAt:        h.UpdatedAt,
		IsCompletedToday: habits.CompletedOn(h.Completions, today),
		LastCompletedAt:  habits.LastCompletedAt(h.Completions),
		CurrentStreak:    habits.CurrentStreak(h.Completions, today),
		TotalCompletions: len(h.Completions),
		CompletionRate:   habits.CompletionRate(len(h.Completions), h.CreatedAt, today),
	}
}

func GetHabits(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	query := database.DB.Where("user_id = ?", userID).Preload("Completions")

	if raw := c.Query("isActive"); raw != "" {
		isActive, err := strconv.ParseBool(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid isActive filter",
			})
		}
		query = query.Where("is_active = ?", isActive)
	}

	var userHabits []models.Habit
	if err := query.Order("sort_order ASC, created_at DESC").Find(&userHabits).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch habits",
		})
	}

	views := make([]models.HabitResponse, len(userHabits))
	for i := range userHabits {
		views[i] = habitView(&userHabits[i])
	}

	return c.JSON(views)
}

func GetHabit(c *fiber.Ctx) error {
	habit, err := findOwnedHabit(c, true)
	if err != nil {
		return err
	}
	return c.JSON(habitView(habit))
}

func CreateHabit(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.CreateHabitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if msg := validateHabitTitle(req.Title); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": msg,
		})
	}

	sortOrder, err := habits.NextSortOrder(database.DB, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create habit",
		})
	}

	habit := models.Habit{
		UserID:    userID,
		Title:     req.Title,
		IsActive:  true,
		SortOrder: sortOrder,
	}

	if err := database.DB.Create(&habit).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create habit",
		})
	}

	view := habitView(&habit)
	WS.BroadcastToUser(userID, WSEvent{Type: EventHabitCreated, Data: view})

	return c.Status(fiber.StatusCreated).JSON(view)
}

func UpdateHabit(c *fiber.Ctx) error {
	habit, err := findOwnedHabit(c, true)
	if err != nil {
		return err
	}

	var req models.UpdateHabitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if msg := validateHabitTitle(req.Title); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": msg,
		})
	}

	habit.Title = req.Title
	// Omitted isActive means active; a full-replace PUT, matching the client
	habit.IsActive = req.IsActive == nil || *req.IsActive

	if err := database.DB.Save(habit).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update habit",
		})
	}

	view := habitView(habit)
	WS.BroadcastToUser(habit.UserID, WSEvent{Type: EventHabitUpdated, Data: view})

	return c.JSON(view)
}

func DeleteHabit(c *fiber.Ctx) error {
	habit, err := findOwnedHabit(c, false)
	if err != nil {
		return err
	}

	// Ledger rows go first; they have no soft-delete column
	if err := database.DB.Where("habit_id = ?", habit.ID).Delete(&models.HabitCompletion{}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete habit",
		})
	}

	if err := database.DB.Delete(habit).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete habit",
		})
	}

	WS.BroadcastToUser(habit.UserID, WSEvent{Type: EventHabitDeleted, Data: fiber.Map{"id": habit.ID}})

	return c.SendStatus(fiber.StatusNoContent)
}

func ReorderHabits(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.ReorderHabitsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := habits.Reorder(database.DB, userID, req.HabitIDs); err != nil {
		if errors.Is(err, habits.ErrInvalidIDs) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Some habit IDs are invalid",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to reorder habits",
		})
	}

	var userHabits []models.Habit
	if err := database.DB.Where("user_id = ?", userID).
		Preload("Completions").
		Order("sort_order ASC, created_at DESC").
		Find(&userHabits).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch habits",
		})
	}

	views := make([]models.HabitResponse, len(userHabits))
	for i := range userHabits {
		views[i] = habitView(&userHabits[i])
	}

	WS.BroadcastToUser(userID, WSEvent{Type: EventHabitsReordered, Data: views})

	return c.JSON(views)
}

func CompleteHabit(c *fiber.Ctx) error {
	habit, err := findOwnedHabit(c, true)
	if err != nil {
		return err
	}

	today := habits.Today()
	if _, err := habits.RecordCompletion(database.DB, habit, today); err != nil {
		if errors.Is(err, habits.ErrAlreadyCompleted) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Habit already completed today",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to complete habit",
		})
	}

	if err := habits.ReloadCompletions(database.DB, habit); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to complete habit",
		})
	}

	view := habitView(habit)

	if streakMilestones[view.CurrentStreak] && services.Push != nil {
		services.Push.SendToUser(habit.UserID,
			fmt.Sprintf("%d-day streak!", view.CurrentStreak),
			fmt.Sprintf("You've kept up \"%s\" for %d days in a row.", habit.Title, view.CurrentStreak),
			map[string]string{"habitId": habit.ID.String()})
	}

	WS.BroadcastToUser(habit.UserID, WSEvent{Type: EventHabitCompleted, Data: view})

	return c.JSON(view)
}

func UncompleteHabit(c *fiber.Ctx) error {
	habit, err := findOwnedHabit(c, true)
	if err != nil {
		return err
	}

	today := habits.Today()
	if err := habits.RemoveCompletion(database.DB, habit, today); err != nil {
		if errors.Is(err, habits.ErrNotCompleted) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Habit not completed today",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to uncomplete habit",
		})
	}

	if err := habits.ReloadCompletions(database.DB, habit); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to uncomplete habit",
		})
	}

	view := habitView(habit)
	WS.BroadcastToUser(habit.UserID, WSEvent{Type: EventHabitUncompleted, Data: view})

	return c.JSON(view)
}

func GetHabitCompletions(c *fiber.Ctx) error {
	habit, err := findOwnedHabit(c, false)
	if err != nil {
		return err
	}

	days := c.QueryInt("days", 30)
	since := time.Now().UTC().AddDate(0, 0, -days)

	completions, err := habits.CompletionsSince(database.DB, habit.ID, since)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch completions",
		})
	}

	records := make([]models.HabitCompletionResponse, len(completions))
	for i, completion := range completions {
		records[i] = models.HabitCompletionResponse{
			ID:            completion.ID,
			HabitID:       completion.HabitID,
			CompletedAt:   completion.CompletedAt,
			CompletedDate: completion.CompletedDate.Format("2006-01-02"),
		}
	}

	return c.JSON(records)
}

func GetHabitStats(c *fiber.Ctx) error {
	habit, err := findOwnedHabit(c, true)
	if err != nil {
		return err
	}

	days := c.QueryInt("days", 30)

	return c.JSON(habits.Stats(habit, days, habits.Today()))
}
