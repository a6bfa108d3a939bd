package auth

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func newApp(secret string) *fiber.App {
	app := fiber.New()
	app.Use(JWT(secret), Middleware())
	app.Get("/whoami", func(c *fiber.Ctx) error {
		p, ok := FromContext(c.UserContext())
		if !ok {
			return c.SendString("anonymous")
		}
		return c.SendString(p.Role + ":" + p.Email)
	})
	return app
}

func TestJWT_AnonymousPassesThrough(t *testing.T) {
	res, err := newApp("secret").Test(httptest.NewRequest("GET", "/whoami", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(res.Body)
	if res.StatusCode != fiber.StatusOK || string(body) != "anonymous" {
		t.Fatalf("expected anonymous 200, got %d %s", res.StatusCode, string(body))
	}
}

func TestJWT_ValidTokenSetsPrincipal(t *testing.T) {
	token, err := IssueToken("secret", time.Hour, Principal{UserID: 1789123456789012480, Email: "alice@x.com", Name: "Alice", Role: RoleShopper})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res, _ := newApp("secret").Test(req)
	body, _ := io.ReadAll(res.Body)
	if string(body) != "shopper:alice@x.com" {
		t.Fatalf("unexpected principal %q", string(body))
	}
}

func TestJWT_SnowflakeIDSurvivesToken(t *testing.T) {
	const id int64 = 1789123456789012481
	token, _ := IssueToken("secret", time.Hour, Principal{UserID: id, Role: RoleShopper})

	app := fiber.New()
	app.Use(JWT("secret"), Middleware())
	var got int64
	app.Get("/id", func(c *fiber.Ctx) error {
		p, _ := FromContext(c.UserContext())
		got = p.UserID
		return nil
	})
	req := httptest.NewRequest("GET", "/id", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if _, err := app.Test(req); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if got != id {
		t.Fatalf("expected %d, got %d", id, got)
	}
}

func TestJWT_BadTokenRejected(t *testing.T) {
	token, _ := IssueToken("other-secret", time.Hour, Principal{Email: "admin@grocery.com", Role: RoleAdmin})
	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res, _ := newApp("secret").Test(req)
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}
	body, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(body), "invalid") {
		t.Fatalf("unexpected body %s", string(body))
	}
}

func TestFromContext_Empty(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Fatalf("expected no principal")
	}
	ctx := WithPrincipal(context.Background(), Principal{Role: RoleAdmin})
	p, ok := FromContext(ctx)
	if !ok || !p.IsAdmin() {
		t.Fatalf("expected admin principal, got %+v", p)
	}
}
