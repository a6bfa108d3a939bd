package message

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wichananm65/grocery-store/internal/idgen"
	"github.com/wichananm65/grocery-store/internal/store"
	"github.com/wichananm65/grocery-store/internal/validation"
)

var ErrNotFound = errors.New("message not found")

// Service manages the contactMessages collection. Messages fire no
// notification; the admin inbox reloads on demand.
type Service struct {
	store store.Store
	log   *zap.Logger
	now   func() time.Time
	mu    sync.Mutex
}

func NewService(s store.Store, log *zap.Logger) *Service {
	return &Service{store: s, log: log, now: time.Now}
}

// List returns messages newest first.
func (s *Service) List(ctx context.Context) []Message {
	msgs := s.load(ctx)
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.After(msgs[j].CreatedAt)
	})
	return msgs
}

// UnreadCount is the number of messages not yet marked read.
func (s *Service) UnreadCount(ctx context.Context) int {
	n := 0
	for _, m := range s.load(ctx) {
		if m.Status != StatusRead {
			n++
		}
	}
	return n
}

func (s *Service) Create(ctx context.Context, f Form) (Message, error) {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Message = strings.TrimSpace(f.Message)
	if err := validation.Struct(f); err != nil {
		return Message{}, err
	}

	created := Message{
		ID:        idgen.MessageID(),
		FullName:  f.FullName,
		Email:     f.Email,
		Phone:     f.Phone,
		Message:   f.Message,
		CreatedAt: s.now().UTC(),
		Status:    StatusUnread,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.save(ctx, append(s.load(ctx), created)); err != nil {
		return Message{}, fmt.Errorf("create message: %w", err)
	}
	return created, nil
}

func (s *Service) MarkRead(ctx context.Context, id string) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.load(ctx)
	for i := range msgs {
		if msgs[i].ID != id {
			continue
		}
		if msgs[i].Status == StatusRead {
			return msgs[i], nil
		}
		msgs[i].Status = StatusRead
		if err := s.save(ctx, msgs); err != nil {
			return Message{}, fmt.Errorf("mark message read: %w", err)
		}
		return msgs[i], nil
	}
	return Message{}, ErrNotFound
}

func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.load(ctx)
	for i := range msgs {
		if msgs[i].ID == id {
			if err := s.save(ctx, append(msgs[:i], msgs[i+1:]...)); err != nil {
				return fmt.Errorf("delete message: %w", err)
			}
			return nil
		}
	}
	return ErrNotFound
}

func (s *Service) load(ctx context.Context) []Message {
	return store.ReadList[Message](ctx, s.store, store.KeyContactMessages, s.log)
}

func (s *Service) save(ctx context.Context, msgs []Message) error {
	return store.Write(ctx, s.store, store.KeyContactMessages, msgs)
}
