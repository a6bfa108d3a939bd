package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHandler_ExposesCounters(t *testing.T) {
	StoreOps.WithLabelValues("get", "products", "hit").Inc()
	ObserveRequest("GET", "/api/v1/products", 200, 5*time.Millisecond)

	app := fiber.New()
	app.Get("/metrics", Handler())

	res, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	body, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(body), "grocery_store_operations_total") {
		t.Fatalf("expected store counter in output, got %s", string(body))
	}
}

func TestDecodeFailures_Increment(t *testing.T) {
	before := testutil.ToFloat64(DecodeFailures.WithLabelValues("orders"))
	DecodeFailures.WithLabelValues("orders").Inc()
	if got := testutil.ToFloat64(DecodeFailures.WithLabelValues("orders")); got != before+1 {
		t.Fatalf("expected %v, got %v", before+1, got)
	}
}

func TestStatusClass(t *testing.T) {
	cases := map[int]string{200: "2xx", 204: "2xx", 302: "3xx", 404: "4xx", 503: "5xx"}
	for code, want := range cases {
		if got := statusClass(code); got != want {
			t.Fatalf("statusClass(%d) = %s, want %s", code, got, want)
		}
	}
}
