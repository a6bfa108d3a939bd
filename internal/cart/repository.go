package cart

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wichananm65/grocery-store/internal/product"
	"github.com/wichananm65/grocery-store/internal/store"
)

// Item describes a product along with its quantity in the cart.
// It embeds the product snapshot taken when the line was last touched.
type Item struct {
	product.Product
	Quantity int `json:"quantity" validate:"gte=1"`
}

// LineTotal is price × quantity.
func (i Item) LineTotal() decimal.Decimal {
	return decimal.NewFromFloat(i.Price).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// TotalOf sums the line totals of items.
func TotalOf(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// Repository provides access to cart documents by key.
type Repository interface {
	Load(ctx context.Context, key string) []Item
	Save(ctx context.Context, key string, items []Item) error
}

// StoreRepository keeps each cart as one document under grocery_cart_<userId>.
type StoreRepository struct {
	store store.Store
	log   *zap.Logger
}

func NewStoreRepository(s store.Store, log *zap.Logger) *StoreRepository {
	return &StoreRepository{store: s, log: log}
}

func (r *StoreRepository) Load(ctx context.Context, key string) []Item {
	return store.ReadList[Item](ctx, r.store, key, r.log)
}

func (r *StoreRepository) Save(ctx context.Context, key string, items []Item) error {
	return store.Write(ctx, r.store, key, items)
}
