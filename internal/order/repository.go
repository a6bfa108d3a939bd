package order

import (
	"context"

	"go.uber.org/zap"

	"github.com/wichananm65/grocery-store/internal/store"
)

// Repository provides access to the order collection.
type Repository interface {
	List(ctx context.Context) []Order
	SaveAll(ctx context.Context, orders []Order) error
	// Legacy returns the per-user copy written by older clients.
	Legacy(ctx context.Context, userID int64) []Order
	DropLegacy(ctx context.Context, userID int64) error
	LastOrderID(ctx context.Context) (string, bool)
	SetLastOrderID(ctx context.Context, id string) error
}

// StoreRepository keeps every order under the single orders key.
type StoreRepository struct {
	store store.Store
	log   *zap.Logger
}

func NewStoreRepository(s store.Store, log *zap.Logger) *StoreRepository {
	return &StoreRepository{store: s, log: log}
}

func (r *StoreRepository) List(ctx context.Context) []Order {
	return store.ReadList[Order](ctx, r.store, store.KeyOrders, r.log)
}

func (r *StoreRepository) SaveAll(ctx context.Context, orders []Order) error {
	return store.Write(ctx, r.store, store.KeyOrders, orders)
}

func (r *StoreRepository) Legacy(ctx context.Context, userID int64) []Order {
	return store.ReadList[Order](ctx, r.store, store.LegacyOrdersKey(userID), r.log)
}

func (r *StoreRepository) DropLegacy(ctx context.Context, userID int64) error {
	return store.Remove(ctx, r.store, store.LegacyOrdersKey(userID))
}

func (r *StoreRepository) LastOrderID(ctx context.Context) (string, bool) {
	id, ok := store.Lookup[string](ctx, r.store, store.KeyLastOrderID, r.log)
	return id, ok && id != ""
}

func (r *StoreRepository) SetLastOrderID(ctx context.Context, id string) error {
	return store.Write(ctx, r.store, store.KeyLastOrderID, id)
}
