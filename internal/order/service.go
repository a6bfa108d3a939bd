package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wichananm65/grocery-store/internal/cart"
	"github.com/wichananm65/grocery-store/internal/event"
	"github.com/wichananm65/grocery-store/internal/idgen"
	"github.com/wichananm65/grocery-store/internal/store"
	"github.com/wichananm65/grocery-store/internal/user"
	"github.com/wichananm65/grocery-store/internal/validation"
)

var (
	ErrNotFound        = errors.New("order not found")
	ErrUnauthenticated = errors.New("sign in to place orders")
)

// Service provides business logic for orders.
type Service struct {
	repo     Repository
	sessions user.Sessions
	bus      *event.Bus
	log      *zap.Logger
	now      func() time.Time

	mu sync.Mutex
}

func NewService(repo Repository, sessions user.Sessions, bus *event.Bus, log *zap.Logger) *Service {
	return &Service{repo: repo, sessions: sessions, bus: bus, log: log, now: time.Now}
}

// ListForUser returns the signed-in shopper's orders, newest first. Orders
// left under the legacy per-user key are folded into the collection on the
// way.
func (s *Service) ListForUser(ctx context.Context) ([]Order, error) {
	u, ok := s.sessions.Current(ctx)
	if !ok {
		return []Order{}, ErrUnauthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.migrateLegacy(ctx, u)
	if err != nil {
		return nil, err
	}
	out := make([]Order, 0)
	for _, o := range all {
		if o.UserID == u.ID {
			out = append(out, o)
		}
	}
	newestFirst(out)
	return out, nil
}

// GetByID returns one of the signed-in shopper's orders.
func (s *Service) GetByID(ctx context.Context, orderID string) (Order, error) {
	orders, err := s.ListForUser(ctx)
	if err != nil {
		return Order{}, err
	}
	for _, o := range orders {
		if o.OrderID == orderID {
			return o, nil
		}
	}
	return Order{}, ErrNotFound
}

func (s *Service) MostRecentForUser(ctx context.Context) (Order, error) {
	orders, err := s.ListForUser(ctx)
	if err != nil {
		return Order{}, err
	}
	if len(orders) == 0 {
		return Order{}, ErrNotFound
	}
	return orders[0], nil
}

// Create records an order for the signed-in shopper.
func (s *Service) Create(ctx context.Context, d Draft) (Order, error) {
	u, ok := s.sessions.Current(ctx)
	if !ok {
		s.log.Warn("order create without session")
		return Order{}, ErrUnauthenticated
	}
	if len(d.Items) == 0 {
		return Order{}, validation.New("items", "cart is empty")
	}

	total := d.TotalAmount
	if total == 0 {
		total = cart.TotalOf(d.Items).InexactFloat64()
	}
	created := Order{
		OrderID:       idgen.OrderID(),
		Items:         d.Items,
		TotalAmount:   total,
		ShippingInfo:  d.ShippingInfo,
		PaymentMethod: d.PaymentMethod,
		Status:        StatusPending,
		CreatedAt:     s.now().UTC(),
		UserID:        u.ID,
		User:          u.Name,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	orders := s.repo.List(ctx)
	if err := s.save(ctx, append(orders, created)); err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}
	s.log.Info("order placed", zap.String("order_id", created.OrderID), zap.Int64("user_id", u.ID))
	return created, nil
}

// ListAll returns every order, newest first.
func (s *Service) ListAll(ctx context.Context) []Order {
	orders := s.repo.List(ctx)
	newestFirst(orders)
	return orders
}

func (s *Service) UpdateStatus(ctx context.Context, orderID, status string) (Order, error) {
	if status != StatusPending && status != StatusDelivered {
		return Order{}, validation.New("status", "must be one of: Pending Delivered")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	orders := s.repo.List(ctx)
	for i := range orders {
		if orders[i].OrderID != orderID {
			continue
		}
		if orders[i].Status == status {
			return orders[i], nil
		}
		orders[i].Status = status
		if err := s.save(ctx, orders); err != nil {
			return Order{}, fmt.Errorf("update order: %w", err)
		}
		return orders[i], nil
	}
	return Order{}, ErrNotFound
}

func (s *Service) Delete(ctx context.Context, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := s.repo.List(ctx)
	for i := range orders {
		if orders[i].OrderID == orderID {
			if err := s.save(ctx, append(orders[:i], orders[i+1:]...)); err != nil {
				return fmt.Errorf("delete order: %w", err)
			}
			return nil
		}
	}
	return ErrNotFound
}

// LastOrderID is the order the confirmation screen should show.
func (s *Service) LastOrderID(ctx context.Context) (string, bool) {
	return s.repo.LastOrderID(ctx)
}

func (s *Service) SetLastOrderID(ctx context.Context, id string) error {
	return s.repo.SetLastOrderID(ctx, id)
}

// Dashboard summarises the orders placed inside w.
func (s *Service) Dashboard(ctx context.Context, w Window) Summary {
	return summarize(w, s.repo.List(ctx))
}

// ExportCSV writes every order as one CSV row.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	orders := s.ListAll(ctx)
	rows := make([]exportRow, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, exportRow{
			OrderID:       o.OrderID,
			CreatedAt:     o.CreatedAt.Format(time.RFC3339),
			UserID:        o.UserID,
			User:          o.User,
			Items:         o.ItemCount(),
			TotalAmount:   decimal.NewFromFloat(o.TotalAmount).StringFixed(2),
			PaymentMethod: o.PaymentMethod,
			Status:        o.Status,
			City:          o.ShippingInfo.City,
		})
	}
	return gocsv.Marshal(&rows, w)
}

// migrateLegacy moves orders found under the per-user key into the single
// collection and drops the legacy key. Callers hold s.mu.
func (s *Service) migrateLegacy(ctx context.Context, u user.SessionUser) ([]Order, error) {
	orders := s.repo.List(ctx)
	legacy := s.repo.Legacy(ctx, u.ID)
	if len(legacy) == 0 {
		return orders, nil
	}

	known := make(map[string]bool, len(orders))
	for _, o := range orders {
		known[o.OrderID] = true
	}
	added := 0
	for _, o := range legacy {
		if known[o.OrderID] {
			continue
		}
		if o.UserID == 0 {
			o.UserID = u.ID
		}
		if o.Status == "" {
			o.Status = StatusPending
		}
		orders = append(orders, o)
		known[o.OrderID] = true
		added++
	}
	if added > 0 {
		if err := s.save(ctx, orders); err != nil {
			return nil, fmt.Errorf("migrate legacy orders: %w", err)
		}
	}
	if err := s.repo.DropLegacy(ctx, u.ID); err != nil {
		s.log.Warn("legacy orders not removed", zap.Int64("user_id", u.ID), zap.Error(err))
	}
	s.log.Info("legacy orders merged", zap.Int64("user_id", u.ID), zap.Int("added", added))
	return orders, nil
}

func (s *Service) save(ctx context.Context, orders []Order) error {
	if err := s.repo.SaveAll(ctx, orders); err != nil {
		return err
	}
	s.bus.Emit(event.OrdersUpdated, store.KeyOrders)
	return nil
}

func newestFirst(orders []Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
