package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wichananm65/grocery-store/internal/event"
	"github.com/wichananm65/grocery-store/internal/product"
	"github.com/wichananm65/grocery-store/internal/store"
	"github.com/wichananm65/grocery-store/internal/user"
)

var (
	ErrUnauthenticated = errors.New("sign in to use the cart")
	ErrItemNotFound    = errors.New("item not in cart")
	ErrStockExceeded   = errors.New("not enough stock")
)

// Catalog is the product lookup the cart re-checks stock against.
type Catalog interface {
	GetByID(ctx context.Context, id int) (product.Product, error)
}

// Service orchestrates cart operations for the signed-in shopper.
type Service struct {
	repo     Repository
	catalog  Catalog
	sessions user.Sessions
	bus      *event.Bus
	log      *zap.Logger
	mu       sync.Mutex
}

func NewService(repo Repository, catalog Catalog, sessions user.Sessions, bus *event.Bus, log *zap.Logger) *Service {
	return &Service{repo: repo, catalog: catalog, sessions: sessions, bus: bus, log: log}
}

// Get returns the shopper's cart, or the guest cart when nobody is signed in.
func (s *Service) Get(ctx context.Context) []Item {
	if u, ok := s.sessions.Current(ctx); ok {
		return s.repo.Load(ctx, store.CartKey(u.ID))
	}
	return s.repo.Load(ctx, store.KeyGuestCart)
}

// Add puts qty units of a product in the cart, clamped to the stock currently
// in the catalog. Without a session nothing changes and an empty cart is
// returned with ErrUnauthenticated.
func (s *Service) Add(ctx context.Context, productID, qty int) ([]Item, error) {
	u, ok := s.sessions.Current(ctx)
	if !ok {
		s.log.Warn("cart add without session", zap.Int("product_id", productID))
		return []Item{}, ErrUnauthenticated
	}
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.catalog.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	key := store.CartKey(u.ID)
	items := s.repo.Load(ctx, key)

	idx := find(items, productID)
	current := 0
	if idx >= 0 {
		current = items[idx].Quantity
	}
	requested := current + qty
	next := min(requested, p.Stock)
	if next < requested {
		s.log.Warn("cart quantity clamped to stock",
			zap.Int("product_id", productID), zap.Int("requested", requested), zap.Int("stock", p.Stock))
	}
	if next < 1 {
		return items, ErrStockExceeded
	}
	if next == current {
		return items, nil
	}

	if idx >= 0 {
		items[idx] = Item{Product: p, Quantity: next}
	} else {
		items = append(items, Item{Product: p, Quantity: next})
	}
	return s.save(ctx, key, items)
}

func (s *Service) Remove(ctx context.Context, productID int) ([]Item, error) {
	return s.mutate(ctx, productID, func(items []Item, idx int) ([]Item, error) {
		return append(items[:idx], items[idx+1:]...), nil
	})
}

// SetQuantity sets a line to qty, clamped to stock. The line is removed when
// the result is below 1.
func (s *Service) SetQuantity(ctx context.Context, productID, qty int) ([]Item, error) {
	if qty < 1 {
		return s.Remove(ctx, productID)
	}
	return s.mutate(ctx, productID, func(items []Item, idx int) ([]Item, error) {
		p, err := s.catalog.GetByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if qty > p.Stock {
			s.log.Warn("cart quantity clamped to stock",
				zap.Int("product_id", productID), zap.Int("requested", qty), zap.Int("stock", p.Stock))
			qty = p.Stock
		}
		if qty < 1 {
			return append(items[:idx], items[idx+1:]...), nil
		}
		items[idx] = Item{Product: p, Quantity: qty}
		return items, nil
	})
}

// Increment adds one unit; it is refused when stock would be exceeded.
func (s *Service) Increment(ctx context.Context, productID int) ([]Item, error) {
	return s.mutate(ctx, productID, func(items []Item, idx int) ([]Item, error) {
		p, err := s.catalog.GetByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if items[idx].Quantity+1 > p.Stock {
			s.log.Warn("cart increment refused", zap.Int("product_id", productID), zap.Int("stock", p.Stock))
			return nil, ErrStockExceeded
		}
		items[idx] = Item{Product: p, Quantity: items[idx].Quantity + 1}
		return items, nil
	})
}

// Decrement removes one unit; the line disappears when it reaches zero.
func (s *Service) Decrement(ctx context.Context, productID int) ([]Item, error) {
	return s.mutate(ctx, productID, func(items []Item, idx int) ([]Item, error) {
		if items[idx].Quantity <= 1 {
			return append(items[:idx], items[idx+1:]...), nil
		}
		items[idx].Quantity--
		return items, nil
	})
}

func (s *Service) Clear(ctx context.Context) error {
	u, ok := s.sessions.Current(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.save(ctx, store.CartKey(u.ID), []Item{})
	return err
}

// Reconcile re-reads every line of the shopper's cart from the catalog.
// Lines for missing or sold-out products are dropped, quantities above stock
// are lowered and prices are refreshed. When anything differed the adjusted
// cart is saved and changed is true.
func (s *Service) Reconcile(ctx context.Context) (items []Item, changed bool, err error) {
	u, ok := s.sessions.Current(ctx)
	if !ok {
		return []Item{}, false, ErrUnauthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := store.CartKey(u.ID)
	items = s.repo.Load(ctx, key)
	next := make([]Item, 0, len(items))
	for _, it := range items {
		p, err := s.catalog.GetByID(ctx, it.ID)
		if errors.Is(err, product.ErrNotFound) {
			s.log.Warn("cart line dropped, product gone", zap.Int("product_id", it.ID))
			changed = true
			continue
		}
		if err != nil {
			return items, false, err
		}
		qty := min(it.Quantity, p.Stock)
		if qty < 1 {
			s.log.Warn("cart line dropped, out of stock", zap.Int("product_id", it.ID))
			changed = true
			continue
		}
		if qty != it.Quantity || p.Price != it.Price || p.MRP != it.MRP {
			s.log.Info("cart line adjusted",
				zap.Int("product_id", it.ID), zap.Int("quantity", qty), zap.Float64("price", p.Price))
			changed = true
		}
		next = append(next, Item{Product: p, Quantity: qty})
	}
	if !changed {
		return items, false, nil
	}
	saved, err := s.save(ctx, key, next)
	if err != nil {
		return items, false, err
	}
	return saved, true, nil
}

// ItemCount is the number of units in the cart.
func (s *Service) ItemCount(ctx context.Context) int {
	n := 0
	for _, it := range s.Get(ctx) {
		n += it.Quantity
	}
	return n
}

func (s *Service) Total(ctx context.Context) decimal.Decimal {
	return TotalOf(s.Get(ctx))
}

// mutate runs fn on the signed-in shopper's cart line for productID and
// saves the result. A refused change leaves the cart untouched.
func (s *Service) mutate(ctx context.Context, productID int, fn func(items []Item, idx int) ([]Item, error)) ([]Item, error) {
	u, ok := s.sessions.Current(ctx)
	if !ok {
		return []Item{}, ErrUnauthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := store.CartKey(u.ID)
	items := s.repo.Load(ctx, key)
	idx := find(items, productID)
	if idx < 0 {
		return items, ErrItemNotFound
	}
	next, err := fn(items, idx)
	if err != nil {
		return s.repo.Load(ctx, key), err
	}
	return s.save(ctx, key, next)
}

func (s *Service) save(ctx context.Context, key string, items []Item) ([]Item, error) {
	if err := s.repo.Save(ctx, key, items); err != nil {
		return nil, err
	}
	s.bus.Emit(event.CartUpdated, key)
	return items, nil
}

func find(items []Item, productID int) int {
	for i, it := range items {
		if it.ID == productID {
			return i
		}
	}
	return -1
}
