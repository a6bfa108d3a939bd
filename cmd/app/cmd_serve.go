package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wichananm65/grocery-store/internal/config"
	"github.com/wichananm65/grocery-store/internal/event"
	"github.com/wichananm65/grocery-store/internal/idgen"
	"github.com/wichananm65/grocery-store/internal/logger"
	"github.com/wichananm65/grocery-store/internal/store"
)

const shutdownTimeout = 10 * time.Second

// grocery serve: start the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, config.Load())
	},
}

func serve(ctx context.Context, cfg config.Config) error {
	log, err := logger.New(cfg.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if err := idgen.Init(cfg.NodeID); err != nil {
		return err
	}
	st, err := store.Open(ctx, cfg.Store, log)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := newServices(cfg, st, log)
	if err := svc.seed(ctx, log); err != nil {
		return err
	}
	app := svc.app(cfg, log)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", zap.String("addr", cfg.Addr), zap.String("store", cfg.Store.Driver))
		return app.Listen(cfg.Addr)
	})
	if w, ok := st.(store.Watcher); ok {
		g.Go(func() error {
			return event.NewBridge(svc.bus, log).Run(ctx, w)
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		return shutdown(app, svc.bus)
	})
	return g.Wait()
}

// shutdown ends the open event streams first: they never finish on their
// own, so the server would otherwise wait out the whole timeout.
func shutdown(app *fiber.App, bus *event.Bus) error {
	bus.Close()
	return app.ShutdownWithTimeout(shutdownTimeout)
}
