// Package checkout turns the signed-in shopper's cart into an order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wichananm65/grocery-store/internal/cart"
	"github.com/wichananm65/grocery-store/internal/interface/presenter"
	"github.com/wichananm65/grocery-store/internal/order"
	"github.com/wichananm65/grocery-store/internal/product"
	"github.com/wichananm65/grocery-store/internal/user"
	"github.com/wichananm65/grocery-store/internal/validation"
)

const (
	PaymentCOD  = "COD"
	PaymentUPI  = "UPI"
	PaymentCard = "Card"
)

var ErrUnauthenticated = errors.New("sign in to check out")

// Request is the checkout form.
type Request struct {
	ShippingInfo  order.ShippingInfo `json:"shippingInfo"`
	PaymentMethod string             `json:"paymentMethod" validate:"required,oneof=COD UPI Card"`
}

type Carts interface {
	Reconcile(ctx context.Context) ([]cart.Item, bool, error)
	Clear(ctx context.Context) error
}

type Orders interface {
	Create(ctx context.Context, d order.Draft) (order.Order, error)
	SetLastOrderID(ctx context.Context, id string) error
}

type Stock interface {
	DecrementStockForOrder(ctx context.Context, lines []product.StockLine) error
}

type Service struct {
	sessions user.Sessions
	carts    Carts
	orders   Orders
	stock    Stock
	log      *zap.Logger

	// one checkout at a time per shopper, keyed by user id
	locks sync.Map
}

func NewService(sessions user.Sessions, carts Carts, orders Orders, stock Stock, log *zap.Logger) *Service {
	return &Service{sessions: sessions, carts: carts, orders: orders, stock: stock, log: log}
}

// PlaceOrder records the cart as an order, takes the ordered units out of
// stock, empties the cart and remembers the order for the confirmation view.
// The cart is first brought in line with the catalog; if that changed it the
// adjusted cart is kept and nothing is ordered. Once the order is written the
// later steps only log their failures.
func (s *Service) PlaceOrder(ctx context.Context, req Request) (order.Order, error) {
	u, ok := s.sessions.Current(ctx)
	if !ok {
		return order.Order{}, ErrUnauthenticated
	}
	req.ShippingInfo = trimShipping(req.ShippingInfo)
	if err := validation.Struct(req); err != nil {
		return order.Order{}, err
	}

	unlock := s.lock(u.ID)
	defer unlock()

	items, changed, err := s.carts.Reconcile(ctx)
	if err != nil {
		return order.Order{}, fmt.Errorf("check cart: %w", err)
	}
	if changed {
		s.log.Info("checkout stopped, cart adjusted to stock", zap.Int64("user_id", u.ID))
		return order.Order{}, validation.New("items", "cart was updated to match available stock")
	}
	if len(items) == 0 {
		return order.Order{}, validation.New("items", "cart is empty")
	}

	placed, err := s.orders.Create(ctx, order.Draft{
		Items:         items,
		TotalAmount:   cart.TotalOf(items).InexactFloat64(),
		ShippingInfo:  req.ShippingInfo,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return order.Order{}, fmt.Errorf("place order: %w", err)
	}

	lines := make([]product.StockLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, product.StockLine{ProductID: it.ID, Quantity: it.Quantity})
	}
	if err := s.stock.DecrementStockForOrder(ctx, lines); err != nil {
		s.log.Error("stock not decremented", zap.String("order_id", placed.OrderID), zap.Error(err))
	}
	if err := s.carts.Clear(ctx); err != nil {
		s.log.Error("cart not cleared", zap.String("order_id", placed.OrderID), zap.Error(err))
	}
	if err := s.orders.SetLastOrderID(ctx, placed.OrderID); err != nil {
		s.log.Warn("last order id not saved", zap.String("order_id", placed.OrderID), zap.Error(err))
	}
	return placed, nil
}

func (s *Service) lock(userID int64) func() {
	v, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func trimShipping(in order.ShippingInfo) order.ShippingInfo {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	in.City = strings.TrimSpace(in.City)
	in.Pincode = strings.TrimSpace(in.Pincode)
	return in
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Post("/api/v1/checkout", h.placeOrder)
}

func (h *Handler) placeOrder(c *fiber.Ctx) error {
	payload := new(Request)
	if err := c.BodyParser(payload); err != nil {
		return presenter.BadBody(c, err)
	}
	placed, err := h.service.PlaceOrder(c.UserContext(), *payload)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) || errors.Is(err, order.ErrUnauthenticated) {
			return presenter.Message(c, fiber.StatusUnauthorized, "Please sign in to place an order")
		}
		return presenter.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order placed",
		"order":   placed,
	})
}
