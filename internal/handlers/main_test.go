package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/lucasreed/habitloop-api/internal/config"
	"github.com/lucasreed/habitloop-api/internal/database"
	"github.com/lucasreed/habitloop-api/internal/middleware"
	"github.com/lucasreed/habitloop-api/internal/models"
	"github.com/lucasreed/habitloop-api/internal/routes"
)

// newTestApp wires a fiber app against a fresh in-memory database. The
// database is test-scoped via the DSN name, so tests don't see each
// other's rows even though database.DB is a package global.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := &config.Config{
		DatabaseURL: fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")),
	}
	require.NoError(t, database.Connect(cfg))
	require.NoError(t, database.Migrate())

	app := fiber.New()
	routes.Setup(app)
	return app
}

// newTestUser creates a user and returns it with a valid bearer token.
func newTestUser(t *testing.T, email string) (*models.User, string) {
	t.Helper()

	user := models.User{Email: email, Name: "Test User"}
	require.NoError(t, database.DB.Create(&user).Error)

	token, err := middleware.GenerateToken(user.ID, user.Email)
	require.NoError(t, err)
	return &user, token
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}
