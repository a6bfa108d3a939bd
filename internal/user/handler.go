package user

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
	r.Post("/api/v1/sign-in", h.login)
	r.Post("/api/v1/sign-up", h.register)
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Post("/api/v1/sign-out", h.logout)
	// profile endpoint returns the current user based on JWT claims
	r.Get("/api/v1/profile", h.getProfile)
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
	return h.respondWithToken(c, fiber.StatusOK, "Login successful", session)
}

func (h *Handler) register(c *fiber.Ctx) error {
	payload := new(SignupInput)
	if err := c.BodyParser(payload); err != nil {
		return presenter.BadBody(c, err)
	}

	session, err := h.service.Signup(c.UserContext(), *payload)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return presenter.Message(c, fiber.StatusConflict, "Email already exists")
		}
		return presenter.Error(c, err)
	}
	return h.respondWithToken(c, fiber.StatusCreated, "Signup successful", session)
}

func (h *Handler) logout(c *fiber.Ctx) error {
	if err := h.service.Logout(c.UserContext()); err != nil {
		return presenter.Error(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) getProfile(c *fiber.Ctx) error {
	session, ok := h.service.Current(c.UserContext())
	if !ok {
		return presenter.Message(c, fiber.StatusUnauthorized, "unauthorized")
	}
	profile, err := h.service.GetByID(c.UserContext(), session.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return presenter.Message(c, fiber.StatusNotFound, "user not found")
		}
		return presenter.Error(c, err)
	}
	return c.JSON(profile)
}

func (h *Handler) respondWithToken(c *fiber.Ctx, status int, msg string, session SessionUser) error {
	token, err := auth.IssueToken(h.secret, h.tokenTTL, auth.Principal{
		UserID: session.ID,
		Name:   session.Name,
		Email:  session.Email,
		Role:   auth.RoleShopper,
	})
	if err != nil {
		return presenter.Message(c, fiber.StatusInternalServerError, "failed to generate token")
	}
	return c.Status(status).JSON(fiber.Map{
		"message": msg,
		"user":    session,
		"token":   token,
	})
}
