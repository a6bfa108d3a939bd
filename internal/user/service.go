package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/wichananm65/grocery-store/internal/auth"
	"github.com/wichananm65/grocery-store/internal/event"
	"github.com/wichananm65/grocery-store/internal/idgen"
	"github.com/wichananm65/grocery-store/internal/store"
	"github.com/wichananm65/grocery-store/internal/validation"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("not signed in")
)

// Sessions resolves the shopper behind a request.
type Sessions interface {
	Current(ctx context.Context) (SessionUser, bool)
}

type Service struct {
	repo Repository
	bus  *event.Bus
	log  *zap.Logger

	// localSession lets the stored currentUser pointer stand in for a token.
	localSession bool

	mu sync.Mutex
}

func NewService(repo Repository, bus *event.Bus, log *zap.Logger, localSession bool) *Service {
	return &Service{repo: repo, bus: bus, log: log, localSession: localSession}
}

// Signup creates an account and signs it in.
func (s *Service) Signup(ctx context.Context, in SignupInput) (SessionUser, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return SessionUser{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.repo.List(ctx)
	for _, u := range users {
		if strings.EqualFold(u.Email, in.Email) {
			return SessionUser{}, ErrEmailExists
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return SessionUser{}, err
	}
	created := User{
		ID:        idgen.NextID(),
		Name:      in.Name,
		Email:     in.Email,
		Password:  string(hashed),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.SaveAll(ctx, append(users, created)); err != nil {
		return SessionUser{}, fmt.Errorf("signup: %w", err)
	}
	session := created.Session()
	if err := s.repo.SetSession(ctx, session); err != nil {
		return SessionUser{}, fmt.Errorf("signup: %w", err)
	}

	s.log.Info("shopper signed up", zap.Int64("user_id", created.ID))
	s.bus.Emit(event.AuthStateChanged, store.KeyCurrentUser)
	return session, nil
}

// Login checks the credentials and records the session. Accounts written by
// older clients with a plaintext password are re-hashed on first login.
func (s *Service) Login(ctx context.Context, email, password string) (SessionUser, error) {
	email = normalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.repo.List(ctx)
	idx := -1
	for i, u := range users {
		if strings.EqualFold(u.Email, email) {
			idx = i
			break
		}
	}
	if idx < 0 || !passwordMatches(users[idx].Password, password) {
		return SessionUser{}, ErrInvalidCredentials
	}

	if !looksLikeBcrypt(users[idx].Password) {
		if hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost); err == nil {
			users[idx].Password = string(hashed)
			if err := s.repo.SaveAll(ctx, users); err != nil {
				s.log.Warn("password upgrade not saved", zap.Int64("user_id", users[idx].ID), zap.Error(err))
			}
		}
	}

	session := users[idx].Session()
	if err := s.repo.SetSession(ctx, session); err != nil {
		return SessionUser{}, fmt.Errorf("login: %w", err)
	}
	s.bus.Emit(event.AuthStateChanged, store.KeyCurrentUser)
	return session, nil
}

func (s *Service) Logout(ctx context.Context) error {
	if err := s.repo.ClearSession(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.bus.Emit(event.AuthStateChanged, store.KeyCurrentUser)
	return nil
}

// Current returns the shopper of the request token, or the stored session
// when local sessions are enabled.
func (s *Service) Current(ctx context.Context) (SessionUser, bool) {
	if p, ok := auth.FromContext(ctx); ok && p.UserID != 0 {
		return SessionUser{ID: p.UserID, Name: p.Name, Email: p.Email}, true
	}
	if s.localSession {
		return s.repo.Session(ctx)
	}
	return SessionUser{}, false
}

func (s *Service) GetByID(ctx context.Context, id int64) (SessionUser, error) {
	for _, u := range s.repo.List(ctx) {
		if u.ID == id {
			return u.Session(), nil
		}
	}
	return SessionUser{}, ErrNotFound
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func passwordMatches(stored, given string) bool {
	if looksLikeBcrypt(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return stored != "" && stored == given
}

func looksLikeBcrypt(value string) bool {
	return len(value) > 4 && value[0:2] == "$2"
}
