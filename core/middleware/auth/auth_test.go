package auth_test

import (
	"net/http/httptest"
	"testing"

	"record-sync/core/middleware/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApp(key string) *fiber.App {
	app := fiber.New()
	app.Use(auth.New(auth.Config{ApiKey: key}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })
	return app
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		target string
		header string
		want   int
	}{
		{"Disabled", "", "/", "", fiber.StatusOK},
		{"Missing key", "secret", "/", "", fiber.StatusUnauthorized},
		{"Wrong key", "secret", "/", "nope", fiber.StatusUnauthorized},
		{"Header key", "secret", "/", "secret", fiber.StatusOK},
		{"Query key", "secret", "/?api_key=secret", "", fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.target, nil)
			if tt.header != "" {
				req.Header.Set(auth.HeaderName, tt.header)
			}

			resp, err := setupApp(tt.key).Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
