package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"go-pos-inventory/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

func newApp() *fiber.App {
	app := fiber.New()
	app.Get("/open", RequireAuth(), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("user_id").(string))
	})
	app.Get("/write", RequireAuth(), RequireAnyPrivilege("product:create", "product:update"), func(c *fiber.Ctx) error {
		return c.SendStatus(204)
	})
	app.Get("/admin", RequireAuth(), func(c *fiber.Ctx) error {
		if !HasPrivilege(c, "settings:manage") {
			return c.SendStatus(403)
		}
		return c.SendStatus(204)
	})
	return app
}

func bearer(t *testing.T, privileges ...string) string {
	t.Helper()
	token, err := jwt.GenerateToken("u-1", "ana@example.com", "Ana", privileges, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return "Bearer " + token
}

func TestRequireAuth(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := newApp()

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", 401},
		{"wrong scheme", "Basic abc", 401},
		{"garbage token", "Bearer not-a-jwt", 401},
		{"valid token", bearer(t), 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/open", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("got %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestPrivilegeChecks(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := newApp()

	tests := []struct {
		name       string
		path       string
		privileges []string
		want       int
	}{
		{"create grants form access", "/write", []string{"product:create"}, 204},
		{"update grants form access", "/write", []string{"product:update"}, 204},
		{"read only is refused", "/write", []string{"product:read"}, 403},
		{"exact privilege", "/admin", []string{"settings:manage"}, 204},
		{"missing privilege", "/admin", []string{"product:create"}, 403},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			req.Header.Set("Authorization", bearer(t, tt.privileges...))
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("got %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
