package category

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wichananm65/grocery-store/internal/event"
	"github.com/wichananm65/grocery-store/internal/store"
)

var (
	ErrNotFound      = errors.New("category not found")
	ErrCategoryInUse = errors.New("category is used by products")
)

// ProductCatalog is the part of the product service categories depend on.
type ProductCatalog interface {
	CountByCategory(ctx context.Context, category string) int
	RenameCategory(ctx context.Context, from, to string) (int, error)
}

type Service struct {
	store    store.Store
	products ProductCatalog
	bus      *event.Bus
	log      *zap.Logger
	mu       sync.Mutex
}

func NewService(s store.Store, products ProductCatalog, bus *event.Bus, log *zap.Logger) *Service {
	return &Service{store: s, products: products, bus: bus, log: log}
}

// List returns the categories, writing the default set when none are stored.
func (s *Service) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Service) Add(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	categories, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	if err := checkName(name, categories, -1); err != nil {
		return "", err
	}
	if err := s.save(ctx, append(categories, name)); err != nil {
		return "", err
	}
	return name, nil
}

// Rename changes a category name in place and moves every product of the old
// category to the new one.
func (s *Service) Rename(ctx context.Context, oldName, newName string) error {
	newName = strings.TrimSpace(newName)

	s.mu.Lock()
	defer s.mu.Unlock()

	categories, err := s.load(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(categories, oldName)
	if idx < 0 {
		return ErrNotFound
	}
	if err := checkName(newName, categories, idx); err != nil {
		return err
	}

	categories[idx] = newName
	if err := s.save(ctx, categories); err != nil {
		return err
	}
	moved, err := s.products.RenameCategory(ctx, oldName, newName)
	if err != nil {
		s.log.Error("category renamed but products not moved",
			zap.String("from", oldName), zap.String("to", newName), zap.Error(err))
		return fmt.Errorf("rename category: %w", err)
	}
	s.log.Info("category renamed", zap.String("from", oldName), zap.String("to", newName), zap.Int("products", moved))
	return nil
}

// Delete removes a category that no product references.
func (s *Service) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	categories, err := s.load(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(categories, name)
	if idx < 0 {
		return ErrNotFound
	}
	if n := s.products.CountByCategory(ctx, name); n > 0 {
		s.log.Warn("category delete blocked", zap.String("category", name), zap.Int("products", n))
		return ErrCategoryInUse
	}
	return s.save(ctx, append(categories[:idx], categories[idx+1:]...))
}

func (s *Service) load(ctx context.Context) ([]string, error) {
	categories, ok := store.Lookup[[]string](ctx, s.store, store.KeyCategories, s.log)
	if ok {
		if categories == nil {
			categories = []string{}
		}
		return categories, nil
	}
	seed := append([]string(nil), DefaultCategories...)
	if err := s.save(ctx, seed); err != nil {
		return nil, err
	}
	s.log.Info("default categories seeded")
	return seed, nil
}

func (s *Service) save(ctx context.Context, categories []string) error {
	if err := store.Write(ctx, s.store, store.KeyCategories, categories); err != nil {
		return err
	}
	s.bus.Emit(event.CategoriesUpdated, store.KeyCategories)
	return nil
}

func indexOf(categories []string, name string) int {
	for i, c := range categories {
		if c == name {
			return i
		}
	}
	return -1
}
