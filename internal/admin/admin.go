package admin

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wichananm65/grocery-store/internal/auth"
	"github.com/wichananm65/grocery-store/internal/config"
	"github.com/wichananm65/grocery-store/internal/event"
	"github.com/wichananm65/grocery-store/internal/interface/presenter"
	"github.com/wichananm65/grocery-store/internal/store"
)

var ErrInvalidCredentials = errors.New("invalid admin credentials")

// Session is the admin console session stored under adminUser.
type Session struct {
	Email string `json:"email" validate:"required"`
	Role  string `json:"role" validate:"eq=admin"`
}

// Service authenticates the single configured admin account.
type Service struct {
	store        store.Store
	bus          *event.Bus
	log          *zap.Logger
	creds        config.AdminConfig
	localSession bool
}

func NewService(s store.Store, bus *event.Bus, log *zap.Logger, creds config.AdminConfig, localSession bool) *Service {
	return &Service{store: s, bus: bus, log: log, creds: creds, localSession: localSession}
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.creds.Email)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.creds.Password)) == 1
	if !emailOK || !passOK {
		s.log.Warn("admin login rejected", zap.String("email", email))
		return Session{}, ErrInvalidCredentials
	}

	session := Session{Email: s.creds.Email, Role: auth.RoleAdmin}
	if err := store.Write(ctx, s.store, store.KeyAdminUser, session); err != nil {
		return Session{}, fmt.Errorf("admin login: %w", err)
	}
	s.bus.Emit(event.AdminAuthStateChanged, store.KeyAdminUser)
	return session, nil
}

func (s *Service) Logout(ctx context.Context) error {
	if err := store.Remove(ctx, s.store, store.KeyAdminUser); err != nil {
		return fmt.Errorf("admin logout: %w", err)
	}
	s.bus.Emit(event.AdminAuthStateChanged, store.KeyAdminUser)
	return nil
}

// Current returns the admin of the request token, or the stored session
// when local sessions are enabled.
func (s *Service) Current(ctx context.Context) (Session, bool) {
	if p, ok := auth.FromContext(ctx); ok {
		if p.IsAdmin() {
			return Session{Email: p.Email, Role: auth.RoleAdmin}, true
		}
		return Session{}, false
	}
	if !s.localSession {
		return Session{}, false
	}
	return store.Lookup[Session](ctx, s.store, store.KeyAdminUser, s.log)
}

func (s *Service) IsAuthenticated(ctx context.Context) bool {
	_, ok := s.Current(ctx)
	return ok
}

// Guard rejects requests that are not made by the admin.
func (s *Service) Guard() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !s.IsAuthenticated(c.UserContext()) {
			return presenter.Message(c, fiber.StatusUnauthorized, "admin authentication required")
		}
		return c.Next()
	}
}
