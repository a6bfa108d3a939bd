package main

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wichananm65/grocery-store/internal/admin"
	"github.com/wichananm65/grocery-store/internal/cart"
	"github.com/wichananm65/grocery-store/internal/category"
	"github.com/wichananm65/grocery-store/internal/checkout"
	"github.com/wichananm65/grocery-store/internal/config"
	"github.com/wichananm65/grocery-store/internal/event"
	"github.com/wichananm65/grocery-store/internal/interface/http/router"
	"github.com/wichananm65/grocery-store/internal/message"
	"github.com/wichananm65/grocery-store/internal/order"
	"github.com/wichananm65/grocery-store/internal/product"
	"github.com/wichananm65/grocery-store/internal/store"
	"github.com/wichananm65/grocery-store/internal/user"
)

// services is the wired data layer shared by every command.
type services struct {
	bus        *event.Bus
	users      *user.Service
	admins     *admin.Service
	products   *product.Service
	categories *category.Service
	carts      *cart.Service
	orders     *order.Service
	checkout   *checkout.Service
	messages   *message.Service
}

func newServices(cfg config.Config, s store.Store, log *zap.Logger) *services {
	bus := event.New(log)
	users := user.NewService(user.NewStoreRepository(s, log), bus, log, cfg.LocalSession)
	products := product.NewService(product.NewStoreRepository(s, log), bus, log)
	carts := cart.NewService(cart.NewStoreRepository(s, log), products, users, bus, log)
	orders := order.NewService(order.NewStoreRepository(s, log), users, bus, log)

	return &services{
		bus:        bus,
		users:      users,
		admins:     admin.NewService(s, bus, log, cfg.Admin, cfg.LocalSession),
		products:   products,
		categories: category.NewService(s, products, bus, log),
		carts:      carts,
		orders:     orders,
		checkout:   checkout.NewService(users, carts, orders, products, log),
		messages:   message.NewService(s, log),
	}
}

// seed writes the default catalog and category list when they are missing.
func (svc *services) seed(ctx context.Context, log *zap.Logger) error {
	seeded, err := svc.products.SeedIfEmpty(ctx, product.DefaultProducts)
	if err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	categories, err := svc.categories.List(ctx)
	if err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	log.Info("catalog ready", zap.Bool("products_seeded", seeded), zap.Int("categories", len(categories)))
	return nil
}

func (svc *services) app(cfg config.Config, log *zap.Logger) *fiber.App {
	return router.New(router.Deps{
		Log:       log,
		Bus:       svc.bus,
		JWTSecret: cfg.JWTSecret,
		Admin:     svc.admins,
		AdminH:    admin.NewHandler(svc.admins, cfg.JWTSecret, cfg.TokenTTL),
		User:      user.NewHandler(svc.users, cfg.JWTSecret, cfg.TokenTTL),
		Product:   product.NewHandler(svc.products),
		Category:  category.NewHandler(svc.categories),
		Cart:      cart.NewHandler(svc.carts),
		Order:     order.NewHandler(svc.orders),
		Checkout:  checkout.NewHandler(svc.checkout),
		Message:   message.NewHandler(svc.messages),
	})
}
