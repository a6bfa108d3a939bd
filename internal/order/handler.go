package order

import (
	"bytes"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/grocery-store/internal/interface/presenter"
)

type Handler struct {
	service *Service
	now     func() time.Time
}

type statusRequest struct {
	Status string `json:"status"`
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service, now: time.Now}
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Get("/api/v1/orders", h.getOrders)
	r.Get("/api/v1/orders/latest", h.getLatest)
	r.Get("/api/v1/orders/:id", h.getOrder)
}

func (h *Handler) RegisterAdminRoutes(r fiber.Router, guard fiber.Handler) {
	r.Get("/api/v1/admin/orders", guard, h.getAllOrders)
	r.Get("/api/v1/admin/orders/export", guard, h.exportOrders)
	r.Patch("/api/v1/admin/orders/:id", guard, h.updateStatus)
	r.Delete("/api/v1/admin/orders/:id", guard, h.deleteOrder)
	r.Get("/api/v1/admin/dashboard", guard, h.getDashboard)
}

func (h *Handler) getOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListForUser(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// getLatest prefers the order handed over by checkout, falling back to the
// shopper's most recent one.
func (h *Handler) getLatest(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if id, ok := h.service.LastOrderID(ctx); ok {
		if o, err := h.service.GetByID(ctx, id); err == nil {
			return c.JSON(o)
		}
	}
	o, err := h.service.MostRecentForUser(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	o, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) getAllOrders(c *fiber.Ctx) error {
	return c.JSON(h.service.ListAll(c.UserContext()))
}

func (h *Handler) updateStatus(c *fiber.Ctx) error {
	payload := new(statusRequest)
	if err := c.BodyParser(payload); err != nil {
		return presenter.BadBody(c, err)
	}
	o, err := h.service.UpdateStatus(c.UserContext(), c.Params("id"), payload.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) deleteOrder(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return presenter.Message(c, fiber.StatusOK, "Order deleted")
}

func (h *Handler) getDashboard(c *fiber.Ctx) error {
	w, err := ParseWindow(c.Query("range"), c.Query("from"), c.Query("to"), h.now())
	if err != nil {
		return presenter.Error(c, err)
	}
	return c.JSON(h.service.Dashboard(c.UserContext(), w))
}

func (h *Handler) exportOrders(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.service.ExportCSV(c.UserContext(), &buf); err != nil {
		return presenter.Error(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="orders.csv"`)
	return c.Send(buf.Bytes())
}

func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return presenter.Message(c, fiber.StatusUnauthorized, "unauthorized")
	case errors.Is(err, ErrNotFound):
		return presenter.Message(c, fiber.StatusNotFound, "Order not found")
	}
	return presenter.Error(c, err)
}
