package cart

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/grocery-store/internal/interface/presenter"
	"github.com/wichananm65/grocery-store/internal/product"
)

type Handler struct {
	service *Service
}

type addRequest struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Get("/api/v1/cart", h.getCart)
	r.Get("/api/v1/cart/summary", h.getSummary)
	r.Post("/api/v1/cart", h.addToCart)
	r.Delete("/api/v1/cart", h.clearCart)
	r.Patch("/api/v1/cart/:productId<int>", h.setQuantity)
	r.Post("/api/v1/cart/:productId<int>/increment", h.increment)
	r.Post("/api/v1/cart/:productId<int>/decrement", h.decrement)
	r.Delete("/api/v1/cart/:productId<int>", h.removeItem)
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	return c.JSON(h.service.Get(c.UserContext()))
}

func (h *Handler) getSummary(c *fiber.Ctx) error {
	ctx := c.UserContext()
	return c.JSON(fiber.Map{
		"itemCount": h.service.ItemCount(ctx),
		"lines":     len(h.service.Get(ctx)),
		"total":     h.service.Total(ctx).InexactFloat64(),
	})
}

func (h *Handler) addToCart(c *fiber.Ctx) error {
	payload := new(addRequest)
	if err := c.BodyParser(payload); err != nil {
		return presenter.BadBody(c, err)
	}
	items, err := h.service.Add(c.UserContext(), payload.ProductID, payload.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

func (h *Handler) setQuantity(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("productId"))
	if err != nil {
		return presenter.BadBody(c, err)
	}
	payload := new(quantityRequest)
	if err := c.BodyParser(payload); err != nil {
		return presenter.BadBody(c, err)
	}
	items, err := h.service.SetQuantity(c.UserContext(), id, payload.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

func (h *Handler) increment(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("productId"))
	if err != nil {
		return presenter.BadBody(c, err)
	}
	items, err := h.service.Increment(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

func (h *Handler) decrement(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("productId"))
	if err != nil {
		return presenter.BadBody(c, err)
	}
	items, err := h.service.Decrement(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("productId"))
	if err != nil {
		return presenter.BadBody(c, err)
	}
	items, err := h.service.Remove(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	if err := h.service.Clear(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return presenter.Message(c, fiber.StatusUnauthorized, "Please sign in to use the cart")
	case errors.Is(err, product.ErrNotFound):
		return presenter.Message(c, fiber.StatusNotFound, "Product not found")
	case errors.Is(err, ErrItemNotFound):
		return presenter.Message(c, fiber.StatusNotFound, "Item not in cart")
	case errors.Is(err, ErrStockExceeded):
		return presenter.Message(c, fiber.StatusConflict, "Not enough stock")
	}
	return presenter.Error(c, err)
}
