package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/lucasreed/habitloop-api/internal/handlers"
	"github.com/lucasreed/habitloop-api/internal/middleware"
)

func Setup(app *fiber.App) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handlers.Register)
	auth.Post("/login", handlers.Login)

	protected := api.Group("/", middleware.Protected())

	protected.Get("/me", handlers.GetMe)
	protected.Post("/device-token", handlers.RegisterDeviceToken)

	tasks := protected.Group("/tasks")
	tasks.Get("/", handlers.GetTasks)
	tasks.Post("/", handlers.CreateTask)
	tasks.Put("/:id", handlers.UpdateTask)
	tasks.Delete("/:id", handlers.DeleteTask)

	habits := protected.Group("/habits")
	habits.Get("/", handlers.GetHabits)
	habits.Post("/", handlers.CreateHabit)
	habits.Post("/reorder", handlers.ReorderHabits)
	habits.Get("/:id", handlers.GetHabit)
	habits.Put("/:id", handlers.UpdateHabit)
	habits.Delete("/:id", handlers.DeleteHabit)
	habits.Post("/:id/complete", handlers.CompleteHabit)
	habits.Delete("/:id/complete", handlers.UncompleteHabit)
	habits.Get("/:id/completions", handlers.GetHabitCompletions)
	habits.Get("/:id/stats", handlers.GetHabitStats)

	// WebSocket for multi-device habit sync
	app.Use("/ws", handlers.WebSocketUpgrade())
	app.Get("/ws", websocket.New(handlers.HandleWebSocket))
}
