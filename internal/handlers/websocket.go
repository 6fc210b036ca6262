package handlers

import (
	"encoding/json"
	"log"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/lucasreed/habitloop-api/internal/middleware"
)

// Event types sent over WebSocket. Clients on other devices apply these to
// keep their habit lists in sync without polling.
const (
	EventHabitCreated     = "habit_created"
	EventHabitUpdated     = "habit_updated"
	EventHabitDeleted     = "habit_deleted"
	EventHabitCompleted   = "habit_completed"
	EventHabitUncompleted = "habit_uncompleted"
	EventHabitsReordered  = "habits_reordered"
)

// WSEvent is the JSON message sent to connected clients
type WSEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Hub manages WebSocket connections per user; a user may have several
// devices connected at once.
type Hub struct {
	mu    sync.RWMutex
	users map[uuid.UUID]map[*websocket.Conn]bool
}

// Global hub instance
var WS = &Hub{
	users: make(map[uuid.UUID]map[*websocket.Conn]bool),
}

func (h *Hub) register(userID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[userID] == nil {
		h.users[userID] = make(map[*websocket.Conn]bool)
	}
	h.users[userID][conn] = true
}

func (h *Hub) unregister(userID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.users[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.users, userID)
		}
	}
}

// BroadcastToUser sends an event to every connection the user has open.
func (h *Hub) BroadcastToUser(userID uuid.UUID, event WSEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conns, ok := h.users[userID]
	if !ok {
		return
	}

	msg, err := json.Marshal(event)
	if err != nil {
		log.Printf("WS broadcast marshal error: %v", err)
		return
	}

	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Printf("WS write error: %v", err)
		}
	}
}

// WebSocketUpgrade checks the upgrade request and validates the JWT. The
// token arrives as ?token= (browsers can't set headers on WebSocket
// requests) or as a Bearer header for other clients.
func WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		tokenString := c.Query("token")
		if tokenString == "" {
			authHeader := c.Get("Authorization")
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				tokenString = ""
			}
		}

		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authentication token",
			})
		}

		claims, err := middleware.ParseToken(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals("userId", claims.UserID)
		return c.Next()
	}
}

// HandleWebSocket holds a connection open for the authenticated user until
// the client goes away.
func HandleWebSocket(c *websocket.Conn) {
	userID, ok := c.Locals("userId").(uuid.UUID)
	if !ok {
		c.Close()
		return
	}

	WS.register(userID, c)
	defer WS.unregister(userID, c)

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
