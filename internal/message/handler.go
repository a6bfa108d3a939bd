package message

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/grocery-store/internal/interface/presenter"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Post("/api/v1/contact", h.createMessage)
}

func (h *Handler) RegisterAdminRoutes(r fiber.Router, guard fiber.Handler) {
	r.Get("/api/v1/admin/messages", guard, h.getMessages)
	r.Patch("/api/v1/admin/messages/:id/read", guard, h.markRead)
	r.Delete("/api/v1/admin/messages/:id", guard, h.deleteMessage)
}

func (h *Handler) createMessage(c *fiber.Ctx) error {
	form := new(Form)
	if err := c.BodyParser(form); err != nil {
		return presenter.BadBody(c, err)
	}
	if _, err := h.service.Create(c.UserContext(), *form); err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Message(c, fiber.StatusCreated, "Thank you! We will get back to you soon.")
}

func (h *Handler) getMessages(c *fiber.Ctx) error {
	ctx := c.UserContext()
	return c.JSON(fiber.Map{
		"messages": h.service.List(ctx),
		"unread":   h.service.UnreadCount(ctx),
	})
}

func (h *Handler) markRead(c *fiber.Ctx) error {
	m, err := h.service.MarkRead(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return presenter.Message(c, fiber.StatusNotFound, "Message not found")
		}
		return presenter.Error(c, err)
	}
	return c.JSON(m)
}

func (h *Handler) deleteMessage(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			return presenter.Message(c, fiber.StatusNotFound, "Message not found")
		}
		return presenter.Error(c, err)
	}
	return presenter.Message(c, fiber.StatusOK, "Message deleted")
}
