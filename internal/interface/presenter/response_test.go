package presenter

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/grocery-store/internal/validation"
)

func TestError_ValidationIs400WithFields(t *testing.T) {
	app := fiber.New()
	app.Get("/v", func(c *fiber.Ctx) error {
		return Error(c, validation.New("email", "must be a valid email address"))
	})
	app.Get("/e", func(c *fiber.Ctx) error {
		return Error(c, errors.New("disk full"))
	})

	res, _ := app.Test(httptest.NewRequest("GET", "/v", nil))
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
	body, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(body), `"email":"must be a valid email address"`) {
		t.Fatalf("missing field message: %s", string(body))
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/e", nil))
	if res.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.StatusCode)
	}
}
