package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	"github.com/wichananm65/grocery-store/internal/event"
	"github.com/wichananm65/grocery-store/internal/store"
	"github.com/wichananm65/grocery-store/internal/validation"
)

var ErrNotFound = errors.New("product not found")

type Service struct {
	repo Repository
	bus  *event.Bus
	log  *zap.Logger
	mu   sync.Mutex
}

func NewService(repo Repository, bus *event.Bus, log *zap.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

// Validate applies the product form rules.
func Validate(f Form) error {
	return validation.Struct(f)
}

func (s *Service) List(ctx context.Context) []Product {
	return s.repo.List(ctx)
}

// ListActive returns the products shown on the storefront.
func (s *Service) ListActive(ctx context.Context) []Product {
	out := make([]Product, 0)
	for _, p := range s.repo.List(ctx) {
		if p.Status == "" || p.Status == StatusActive {
			out = append(out, p)
		}
	}
	return out
}

func (s *Service) GetByID(ctx context.Context, id int) (Product, error) {
	for _, p := range s.repo.List(ctx) {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (s *Service) ListByCategory(ctx context.Context, category string) []Product {
	out := make([]Product, 0)
	for _, p := range s.ListActive(ctx) {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Search matches query case-insensitively against name and category.
func (s *Service) Search(ctx context.Context, query string) []Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.ListActive(ctx)
	}
	out := make([]Product, 0)
	for _, p := range s.ListActive(ctx) {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Category), q) {
			out = append(out, p)
		}
	}
	return out
}

// CountByCategory returns how many products reference category.
func (s *Service) CountByCategory(ctx context.Context, category string) int {
	n := 0
	for _, p := range s.repo.List(ctx) {
		if p.Category == category {
			n++
		}
	}
	return n
}

// Add stores p, assigning the next free id when p.ID is zero.
func (s *Service) Add(ctx context.Context, p Product) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := s.repo.List(ctx)
	if p.ID == 0 {
		p.ID = nextID(products)
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	if err := s.save(ctx, append(products, p)); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id int, patch Patch) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := s.repo.List(ctx)
	for i := range products {
		if products[i].ID != id {
			continue
		}
		products[i] = patch.apply(products[i])
		products[i].ID = id
		if err := s.save(ctx, products); err != nil {
			return Product{}, err
		}
		return products[i], nil
	}
	return Product{}, ErrNotFound
}

func (s *Service) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := s.repo.List(ctx)
	for i := range products {
		if products[i].ID == id {
			return s.save(ctx, append(products[:i], products[i+1:]...))
		}
	}
	return ErrNotFound
}

// DecrementStockForOrder consumes ordered quantities from stock. Stock never
// goes below zero; lines for unknown products are skipped.
func (s *Service) DecrementStockForOrder(ctx context.Context, lines []StockLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := s.repo.List(ctx)
	index := make(map[int]int, len(products))
	for i, p := range products {
		index[p.ID] = i
	}
	for _, line := range lines {
		i, ok := index[line.ProductID]
		if !ok {
			s.log.Warn("stock decrement skipped unknown product", zap.Int("product_id", line.ProductID))
			continue
		}
		products[i].Stock = max(0, products[i].Stock-line.Quantity)
	}
	return s.save(ctx, products)
}

// SeedIfEmpty writes defaults when the catalog is empty and reports whether it did.
func (s *Service) SeedIfEmpty(ctx context.Context, defaults []Product) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.repo.List(ctx)) > 0 {
		return false, nil
	}
	seed := make([]Product, 0, len(defaults))
	for _, p := range defaults {
		if p.ID == 0 {
			p.ID = nextID(seed)
		}
		seed = append(seed, p)
	}
	if err := s.save(ctx, seed); err != nil {
		return false, err
	}
	s.log.Info("product catalog seeded", zap.Int("count", len(seed)))
	return true, nil
}

// RenameCategory rewrites every product in category from to category to and
// returns how many changed.
func (s *Service) RenameCategory(ctx context.Context, from, to string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := s.repo.List(ctx)
	changed := 0
	for i := range products {
		if products[i].Category == from {
			products[i].Category = to
			changed++
		}
	}
	if err := s.save(ctx, products); err != nil {
		return 0, err
	}
	return changed, nil
}

// ExportCSV writes the catalog as CSV with a header row.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	products := s.repo.List(ctx)
	if err := gocsv.Marshal(&products, w); err != nil {
		return fmt.Errorf("export products: %w", err)
	}
	return nil
}

func (s *Service) save(ctx context.Context, products []Product) error {
	if err := s.repo.SaveAll(ctx, products); err != nil {
		return err
	}
	s.bus.Emit(event.ProductsUpdated, store.KeyProducts)
	return nil
}

func nextID(products []Product) int {
	highest := 0
	for _, p := range products {
		highest = max(highest, p.ID)
	}
	return highest + 1
}
