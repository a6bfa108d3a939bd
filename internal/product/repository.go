package product

import (
	"context"

	"go.uber.org/zap"

	"github.com/wichananm65/grocery-store/internal/store"
)

type Repository interface {
	List(ctx context.Context) []Product
	SaveAll(ctx context.Context, products []Product) error
}

// StoreRepository keeps the whole catalog as one document under products.
type StoreRepository struct {
	store store.Store
	log   *zap.Logger
}

func NewStoreRepository(s store.Store, log *zap.Logger) *StoreRepository {
	return &StoreRepository{store: s, log: log}
}

func (r *StoreRepository) List(ctx context.Context) []Product {
	return store.ReadList[Product](ctx, r.store, store.KeyProducts, r.log)
}

func (r *StoreRepository) SaveAll(ctx context.Context, products []Product) error {
	return store.Write(ctx, r.store, store.KeyProducts, products)
}
