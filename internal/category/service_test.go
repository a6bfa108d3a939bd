package category

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wichananm65/grocery-store/internal/event"
	"github.com/wichananm65/grocery-store/internal/product"
	"github.com/wichananm65/grocery-store/internal/store"
	"github.com/wichananm65/grocery-store/internal/validation"
)

type fixture struct {
	store    *store.MemoryStore
	products *product.Service
	svc      *Service
	topics   []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zap.NewNop()
	f := &fixture{store: store.NewMemory()}
	bus := event.New(log)
	bus.SubscribeAll(func(n event.Notification) { f.topics = append(f.topics, n.Topic) })
	f.products = product.NewService(product.NewStoreRepository(f.store, log), bus, log)
	f.svc = NewService(f.store, f.products, bus, log)
	return f
}

func TestList_SeedsDefaultsOnFirstUse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	got, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultCategories, got)
	assert.Equal(t, []string{event.CategoriesUpdated}, f.topics)

	_, err = f.svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, f.topics, 1, "seeding happens once")
}

func TestAdd_ValidatesName(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	name, err := f.svc.Add(ctx, "  Frozen Foods ")
	require.NoError(t, err)
	assert.Equal(t, "Frozen Foods", name)

	for _, bad := range []string{"", "   ", "A", "Baby-Care", "Snacks2", "frozen FOODS", "STAPLES"} {
		_, err := f.svc.Add(ctx, bad)
		_, ok := validation.As(err)
		assert.True(t, ok, "expected validation error for %q", bad)
	}

	got, _ := f.svc.List(ctx)
	assert.Len(t, got, len(DefaultCategories)+1)
}

func TestAcceptedNamesMatchPattern(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, candidate := range []string{"Pet Care", " Baby Care ", "x", "Bakery & Cakes", "Tea", "tea", "Organic"} {
		name, err := f.svc.Add(ctx, candidate)
		if err != nil {
			continue
		}
		assert.Regexp(t, `^[A-Za-z ]{2,}$`, name)
	}
	got, _ := f.svc.List(ctx)
	assert.Contains(t, got, "Tea")
	assert.NotContains(t, got, "tea")
}

func TestRename_CascadesToProducts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.products.SeedIfEmpty(ctx, product.DefaultProducts)
	require.NoError(t, err)
	before, _ := f.svc.List(ctx)
	dairy := f.products.CountByCategory(ctx, "Dairy & Bakery")
	f.topics = nil

	require.NoError(t, f.svc.Rename(ctx, "Dairy & Bakery", "Dairy"))

	after, _ := f.svc.List(ctx)
	assert.Len(t, after, len(before))
	assert.Contains(t, after, "Dairy")
	assert.NotContains(t, after, "Dairy & Bakery")
	assert.Zero(t, f.products.CountByCategory(ctx, "Dairy & Bakery"))
	assert.Equal(t, dairy, f.products.CountByCategory(ctx, "Dairy"))
	assert.Equal(t, []string{event.CategoriesUpdated, event.ProductsUpdated}, f.topics)
}

func TestRename_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	before, _ := f.svc.List(ctx)

	assert.ErrorIs(t, f.svc.Rename(ctx, "Frozen", "Frozen Foods"), ErrNotFound)

	err := f.svc.Rename(ctx, "Staples", "household")
	_, ok := validation.As(err)
	assert.True(t, ok, "collision must be a validation error")

	after, _ := f.svc.List(ctx)
	assert.Equal(t, before, after)

	// changing only the case of the same category is allowed
	require.NoError(t, f.svc.Rename(ctx, "Staples", "STAPLES"))
}

func TestDelete_BlockedWhileInUse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.products.Add(ctx, product.Product{Name: "Milk", Category: "Dairy & Bakery", MRP: 60, Price: 50, Unit: "1L", Stock: 10})
	require.NoError(t, err)
	before, _ := f.svc.List(ctx)

	assert.ErrorIs(t, f.svc.Delete(ctx, "Dairy & Bakery"), ErrCategoryInUse)
	after, _ := f.svc.List(ctx)
	assert.Equal(t, before, after)

	require.NoError(t, f.svc.Delete(ctx, "Household"))
	after, _ = f.svc.List(ctx)
	assert.NotContains(t, after, "Household")
	assert.ErrorIs(t, f.svc.Delete(ctx, "Household"), ErrNotFound)
}

func TestList_CorruptDocumentReseeds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.store.Put(ctx, store.KeyCategories, []byte(`{"broken":`)))

	got, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultCategories, got)
}
