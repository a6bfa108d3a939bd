package cart

import (
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func makeAppWithCartHandler(t *testing.T) (*fiber.App, fixture) {
	t.Helper()
	f := newFixture(t)
	app := fiber.New()
	NewHandler(f.svc).RegisterProtectedRoutes(app)
	return app, f
}

func TestCartRoutes_AddAndSummary(t *testing.T) {
	app, _ := makeAppWithCartHandler(t)

	req := httptest.NewRequest("POST", "/api/v1/cart", strings.NewReader(`{"productId":1,"quantity":2}`))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("add request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), `"quantity":2`) || !strings.Contains(string(b), `"name":"Milk"`) {
		t.Fatalf("unexpected cart %s", string(b))
	}

	res2, _ := app.Test(httptest.NewRequest("GET", "/api/v1/cart/summary", nil))
	b2, _ := io.ReadAll(res2.Body)
	if !strings.Contains(string(b2), `"itemCount":2`) || !strings.Contains(string(b2), `"total":100`) {
		t.Fatalf("unexpected summary %s", string(b2))
	}
}

func TestCartRoutes_StockAndMissing(t *testing.T) {
	app, _ := makeAppWithCartHandler(t)

	req := httptest.NewRequest("POST", "/api/v1/cart", strings.NewReader(`{"productId":3,"quantity":1}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 for out of stock product, got %d", res.StatusCode)
	}

	res2, _ := app.Test(httptest.NewRequest("POST", "/api/v1/cart/1/increment", nil))
	if res2.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for line not in cart, got %d", res2.StatusCode)
	}
}

func TestCartRoutes_Unauthenticated(t *testing.T) {
	app, f := makeAppWithCartHandler(t)
	f.session.ok = false

	req := httptest.NewRequest("POST", "/api/v1/cart", strings.NewReader(`{"productId":1,"quantity":1}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}

	res2, _ := app.Test(httptest.NewRequest("GET", "/api/v1/cart", nil))
	if res2.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for guest cart, got %d", res2.StatusCode)
	}
	b, _ := io.ReadAll(res2.Body)
	if strings.TrimSpace(string(b)) != "[]" {
		t.Fatalf("expected empty guest cart, got %s", string(b))
	}
}

func TestCartRoutes_QuantityAndRemove(t *testing.T) {
	app, f := makeAppWithCartHandler(t)
	if _, err := f.svc.Add(t.Context(), 1, 1); err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	req := httptest.NewRequest("PATCH", "/api/v1/cart/1", strings.NewReader(`{"quantity":3}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if n := f.svc.ItemCount(t.Context()); n != 3 {
		t.Fatalf("expected 3 units, got %d", n)
	}

	res2, _ := app.Test(httptest.NewRequest("DELETE", "/api/v1/cart/1", nil))
	if res2.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for remove, got %d", res2.StatusCode)
	}

	res3, _ := app.Test(httptest.NewRequest("DELETE", "/api/v1/cart", nil))
	if res3.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204 for clear, got %d", res3.StatusCode)
	}
}

func TestCartRoutes_SummaryUsesServiceTotals(t *testing.T) {
	app, f := makeAppWithCartHandler(t)
	ctx := t.Context()
	if _, err := f.svc.Add(ctx, 1, 3); err != nil {
		t.Fatalf("seed cart: %v", err)
	}
	if _, err := f.svc.Add(ctx, 2, 1); err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/cart/summary", nil))
	b, _ := io.ReadAll(res.Body)
	want := fmt.Sprintf(`"itemCount":%d`, f.svc.ItemCount(ctx))
	if !strings.Contains(string(b), want) || !strings.Contains(string(b), `"lines":2`) {
		t.Fatalf("unexpected summary %s", string(b))
	}
	if !strings.Contains(string(b), `"total":`+f.svc.Total(ctx).String()) {
		t.Fatalf("expected total %s in %s", f.svc.Total(ctx).String(), string(b))
	}
}
