package main

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wichananm65/grocery-store/internal/config"
	"github.com/wichananm65/grocery-store/internal/product"
	"github.com/wichananm65/grocery-store/internal/store"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret: "wire-test",
		Admin:     config.AdminConfig{Email: "admin@grocery.com", Password: "admin123"},
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	log := zap.NewNop()
	svc := newServices(testConfig(), st, log)

	require.NoError(t, svc.seed(ctx, log))
	require.NoError(t, svc.seed(ctx, log))
	assert.Len(t, svc.products.List(ctx), len(product.DefaultProducts))

	categories, err := svc.categories.List(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, categories)
}

func TestAppServesSeededCatalog(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	log := zap.NewNop()
	cfg := testConfig()
	svc := newServices(cfg, st, log)
	require.NoError(t, svc.seed(ctx, log))

	res, err := svc.app(cfg, log).Test(httptest.NewRequest("GET", "/api/v1/products?q=rice", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, res.StatusCode)
	b, _ := io.ReadAll(res.Body)
	assert.True(t, strings.Contains(string(b), "Basmati Rice"))
}

func TestResetRequiresFlag(t *testing.T) {
	t.Setenv("STORE_DRIVER", config.DriverMemory)
	t.Setenv("ALLOW_RESET", "false")
	resetCmd.SetContext(context.Background())
	err := resetCmd.RunE(resetCmd, nil)
	assert.ErrorIs(t, err, errResetDisabled)
}

func TestShutdownClosesEventStreams(t *testing.T) {
	log := zap.NewNop()
	cfg := testConfig()
	svc := newServices(cfg, store.NewMemory(), log)
	app := svc.app(cfg, log)

	_ = shutdown(app, svc.bus)

	select {
	case <-svc.bus.Done():
	default:
		t.Fatal("expected the event bus to be closed on shutdown")
	}
}
