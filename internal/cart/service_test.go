package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wichananm65/grocery-store/internal/event"
	"github.com/wichananm65/grocery-store/internal/product"
	"github.com/wichananm65/grocery-store/internal/store"
	"github.com/wichananm65/grocery-store/internal/user"
)

type fixedSession struct {
	user user.SessionUser
	ok   bool
}

func (f *fixedSession) Current(context.Context) (user.SessionUser, bool) {
	return f.user, f.ok
}

type fixture struct {
	svc      *Service
	products *product.Service
	session  *fixedSession
	store    *store.MemoryStore
	fired    *int
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	log := zap.NewNop()
	s := store.NewMemory()
	bus := event.New(log)
	fired := 0
	_, err := bus.Subscribe(event.CartUpdated, func(event.Notification) { fired++ })
	require.NoError(t, err)

	products := product.NewService(product.NewStoreRepository(s, log), bus, log)
	_, err = products.SeedIfEmpty(context.Background(), []product.Product{
		{ID: 1, Name: "Milk", Category: "Dairy & Bakery", MRP: 60, Price: 50, Unit: "1L", Stock: 5, Status: product.StatusActive},
		{ID: 2, Name: "Saffron", Category: "Staples", MRP: 500, Price: 450, Unit: "1g", Stock: 1, Status: product.StatusActive},
		{ID: 3, Name: "Ghee", Category: "Staples", MRP: 700, Price: 650, Unit: "1L", Stock: 0, Status: product.StatusActive},
	})
	require.NoError(t, err)

	session := &fixedSession{user: user.SessionUser{ID: 42, Name: "Asha", Email: "asha@example.com"}, ok: true}
	svc := NewService(NewStoreRepository(s, log), products, session, bus, log)
	return fixture{svc: svc, products: products, session: session, store: s, fired: &fired}
}

func TestAdd_NewLineAndMerge(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	items, err := f.svc.Add(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "Milk", items[0].Name)

	items, err = f.svc.Add(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, items[0].Quantity, "quantity below one counts as one")
	assert.Equal(t, 2, *f.fired)

	stored := store.ReadList[Item](ctx, f.store, store.CartKey(42), zap.NewNop())
	assert.Equal(t, items, stored)
}

func TestAdd_ClampsToStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	items, err := f.svc.Add(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, items[0].Quantity)

	// second add of the last unit leaves the line as it was
	items, err = f.svc.Add(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, 1, *f.fired)

	items, err = f.svc.Add(ctx, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, 5, items[1].Quantity)
}

func TestAdd_OutOfStockAndUnknown(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	items, err := f.svc.Add(ctx, 3, 1)
	assert.ErrorIs(t, err, ErrStockExceeded)
	assert.Empty(t, items)

	_, err = f.svc.Add(ctx, 99, 1)
	assert.ErrorIs(t, err, product.ErrNotFound)
	assert.Equal(t, 0, *f.fired)
}

func TestAdd_Unauthenticated(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.session.ok = false

	items, err := f.svc.Add(ctx, 1, 1)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Empty(t, f.svc.Get(ctx))
	assert.Equal(t, 0, *f.fired)
}

func TestIncrementNeverExceedsStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Add(ctx, 1, 1)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		items, err := f.svc.Increment(ctx, 1)
		if err != nil {
			assert.ErrorIs(t, err, ErrStockExceeded)
		}
		require.Len(t, items, 1)
		assert.LessOrEqual(t, items[0].Quantity, 5)
	}
	assert.Equal(t, 5, f.svc.ItemCount(ctx))
}

func TestDecrementRemovesAtZero(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Add(ctx, 1, 2)
	require.NoError(t, err)
	items, err := f.svc.Decrement(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, items[0].Quantity)

	items, err = f.svc.Decrement(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = f.svc.Decrement(ctx, 1)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestSetQuantity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Add(ctx, 1, 1)
	require.NoError(t, err)

	items, err := f.svc.SetQuantity(ctx, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, items[0].Quantity)

	items, err = f.svc.SetQuantity(ctx, 1, 40)
	require.NoError(t, err)
	assert.Equal(t, 5, items[0].Quantity)

	items, err = f.svc.SetQuantity(ctx, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSetQuantity_StockLoweredBelowLine(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Add(ctx, 1, 5)
	require.NoError(t, err)
	stock := 2
	_, err = f.products.Update(ctx, 1, product.Patch{Stock: &stock})
	require.NoError(t, err)

	items, err := f.svc.SetQuantity(ctx, 1, 4)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)

	stock = 0
	_, err = f.products.Update(ctx, 1, product.Patch{Stock: &stock})
	require.NoError(t, err)
	items, err = f.svc.SetQuantity(ctx, 1, 1)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestReconcile_AdjustsToCatalog(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Add(ctx, 1, 5)
	require.NoError(t, err)
	_, err = f.svc.Add(ctx, 2, 1)
	require.NoError(t, err)

	items, changed, err := f.svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, items, 2)
	firedBefore := *f.fired

	stock, price := 2, 55.0
	_, err = f.products.Update(ctx, 1, product.Patch{Stock: &stock, Price: &price})
	require.NoError(t, err)
	require.NoError(t, f.products.Delete(ctx, 2))

	items, changed, err = f.svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 55.0, items[0].Price)
	assert.Equal(t, firedBefore+1, *f.fired)
	assert.Equal(t, items, f.svc.Get(ctx))
}

func TestReconcile_DropsSoldOutLines(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Add(ctx, 2, 1)
	require.NoError(t, err)
	zero := 0
	_, err = f.products.Update(ctx, 2, product.Patch{Stock: &zero})
	require.NoError(t, err)

	items, changed, err := f.svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Empty(t, items)

	f.session.ok = false
	_, _, err = f.svc.Reconcile(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestTotalAndClear(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Add(ctx, 1, 3)
	require.NoError(t, err)
	_, err = f.svc.Add(ctx, 2, 1)
	require.NoError(t, err)

	assert.Equal(t, "600", f.svc.Total(ctx).String())
	assert.Equal(t, 4, f.svc.ItemCount(ctx))

	require.NoError(t, f.svc.Clear(ctx))
	assert.Empty(t, f.svc.Get(ctx))
	assert.True(t, f.svc.Total(ctx).IsZero())
}

func TestCartsArePerUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Add(ctx, 1, 1)
	require.NoError(t, err)

	f.session.user = user.SessionUser{ID: 43}
	assert.Empty(t, f.svc.Get(ctx))

	f.session.ok = false
	assert.Empty(t, f.svc.Get(ctx))
}

func TestTotalOf(t *testing.T) {
	items := []Item{
		{Product: product.Product{Price: 0.1}, Quantity: 3},
		{Product: product.Product{Price: 19.99}, Quantity: 2},
	}
	assert.Equal(t, "40.28", TotalOf(items).String())
}
