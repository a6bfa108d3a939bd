package admin

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/grocery-store/internal/auth"
	"github.com/wichananm65/grocery-store/internal/interface/presenter"
)

type Handler struct {
	service  *Service
	secret   string
	tokenTTL time.Duration
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewHandler(service *Service, secret string, tokenTTL time.Duration) *Handler {
	return &Handler{service: service, secret: secret, tokenTTL: tokenTTL}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Post("/api/v1/admin/sign-in", h.login)
}

func (h *Handler) RegisterAdminRoutes(r fiber.Router, guard fiber.Handler) {
	r.Post("/api/v1/admin/sign-out", guard, h.logout)
	r.Get("/api/v1/admin/session", guard, h.session)
}

func (h *Handler) login(c *fiber.Ctx) error {
	payload := new(loginRequest)
	if err := c.BodyParser(payload); err != nil {
		return presenter.BadBody(c, err)
	}
	session, err := h.service.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return presenter.Message(c, fiber.StatusUnauthorized, "Invalid email or password")
		}
		return presenter.Error(c, err)
	}

	token, err := auth.IssueToken(h.secret, h.tokenTTL, auth.Principal{Email: session.Email, Role: auth.RoleAdmin})
	if err != nil {
		return presenter.Message(c, fiber.StatusInternalServerError, "failed to generate token")
	}
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"admin":   session,
		"token":   token,
	})
}

func (h *Handler) logout(c *fiber.Ctx) error {
	if err := h.service.Logout(c.UserContext()); err != nil {
		return presenter.Error(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) session(c *fiber.Ctx) error {
	session, _ := h.service.Current(c.UserContext())
	return c.JSON(session)
}
