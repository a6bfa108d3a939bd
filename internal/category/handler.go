package category

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/grocery-store/internal/interface/presenter"
)

type Handler struct {
	service *Service
}

type nameRequest struct {
	Name string `json:"name"`
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Get("/api/v1/categories", h.getCategories)
}

func (h *Handler) RegisterAdminRoutes(r fiber.Router, guard fiber.Handler) {
	r.Post("/api/v1/admin/categories", guard, h.addCategory)
	r.Put("/api/v1/admin/categories/:name", guard, h.renameCategory)
	r.Delete("/api/v1/admin/categories/:name", guard, h.deleteCategory)
}

func (h *Handler) getCategories(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext())
	if err != nil {
		return presenter.Error(c, err)
	}
	return c.JSON(items)
}

func (h *Handler) addCategory(c *fiber.Ctx) error {
	payload := new(nameRequest)
	if err := c.BodyParser(payload); err != nil {
		return presenter.BadBody(c, err)
	}
	name, err := h.service.Add(c.UserContext(), payload.Name)
	if err != nil {
		return presenter.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"name": name})
}

func (h *Handler) renameCategory(c *fiber.Ctx) error {
	oldName, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return presenter.BadBody(c, err)
	}
	payload := new(nameRequest)
	if err := c.BodyParser(payload); err != nil {
		return presenter.BadBody(c, err)
	}
	if err := h.service.Rename(c.UserContext(), oldName, payload.Name); err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(fiber.Map{"name": payload.Name})
}

func (h *Handler) deleteCategory(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return presenter.BadBody(c, err)
	}
	if err := h.service.Delete(c.UserContext(), name); err != nil {
		return h.mapError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return presenter.Message(c, fiber.StatusNotFound, "Category not found")
	case errors.Is(err, ErrCategoryInUse):
		return presenter.Message(c, fiber.StatusConflict, "Cannot delete a category that still has products")
	default:
		return presenter.Error(c, err)
	}
}
