package middleware_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/teraonavi/navi-admin/internal/middleware"
)

func TestVersionMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.VersionMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(middleware.APIVersion(c))
	})

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"default when absent", "", "1.0.0"},
		{"alias normalized", "1.0", "1.0.0"},
		{"explicit version kept", "2.1.0", "2.1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("X-Api-Version", tt.header)
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if got := resp.Header.Get("X-Api-Version"); got != tt.want {
				t.Errorf("response header = %q, want %q", got, tt.want)
			}
		})
	}
}
