package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exercise runs the behaviour every backend must share.
func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, found, err := s.Get(ctx, KeyProducts)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Put(ctx, KeyProducts, []byte(`[{"id":1}]`)))
	require.NoError(t, s.Put(ctx, CartKey(7), []byte(`[]`)))
	require.NoError(t, s.Put(ctx, CartKey(8), []byte(`[]`)))
	require.NoError(t, s.Put(ctx, KeyGuestCart, []byte(`[]`)))

	v, found, err := s.Get(ctx, KeyProducts)
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `[{"id":1}]`, string(v))

	keys, err := s.Keys(ctx, PrefixCart)
	require.NoError(t, err)
	assert.Equal(t, []string{"grocery_cart_7", "grocery_cart_8", "grocery_cart_guest"}, keys)

	require.NoError(t, s.Delete(ctx, KeyProducts))
	_, found, err = s.Get(ctx, KeyProducts)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, Reset(ctx, s))
	keys, err = s.Keys(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestMemoryStore(t *testing.T) {
	exercise(t, NewMemory())
}

func TestBoltStore(t *testing.T) {
	s, err := OpenBolt(filepath.Join(t.TempDir(), "grocery.db"))
	require.NoError(t, err)
	defer s.Close()
	exercise(t, s)
}

func TestBoltStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grocery.db")
	ctx := context.Background()

	s, err := OpenBolt(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, KeyLastOrderID, []byte(`"ORD-1"`)))
	require.NoError(t, s.Close())

	s, err = OpenBolt(path)
	require.NoError(t, err)
	defer s.Close()
	v, found, err := s.Get(ctx, KeyLastOrderID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, `"ORD-1"`, string(v))
}

func TestMemoryStore_WatchSeesOtherHandles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tabA := NewMemory()
	tabB := tabA.WithOrigin("tab-b")

	changes, err := tabA.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, tabB.Put(ctx, KeyProducts, []byte(`[]`)))

	select {
	case c := <-changes:
		assert.Equal(t, KeyProducts, c.Key)
		assert.Equal(t, "tab-b", c.Origin)
	case <-time.After(time.Second):
		t.Fatal("expected a change notification")
	}

	v, found, _ := tabA.Get(ctx, KeyProducts)
	assert.True(t, found)
	assert.Equal(t, "[]", string(v))
}

func TestMemoryStore_WatchClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	changes, err := NewMemory().Watch(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-changes:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("watch channel was not closed")
	}
}

func TestFamily(t *testing.T) {
	assert.Equal(t, "cart", Family(CartKey(1)))
	assert.Equal(t, "cart", Family(KeyGuestCart))
	assert.Equal(t, "orders_legacy", Family(LegacyOrdersKey(1)))
	assert.Equal(t, "orders", Family(KeyOrders))
}

func TestDecodeChange(t *testing.T) {
	c, err := decodeChange(`{"key":"products","origin":"abc"}`)
	require.NoError(t, err)
	assert.Equal(t, Change{Key: "products", Origin: "abc"}, c)

	_, err = decodeChange(`{"origin":"abc"}`)
	assert.Error(t, err)
	_, err = decodeChange(`not json`)
	assert.Error(t, err)
}
