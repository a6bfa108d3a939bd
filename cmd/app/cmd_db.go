package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wichananm65/grocery-store/internal/config"
	"github.com/wichananm65/grocery-store/internal/logger"
	"github.com/wichananm65/grocery-store/internal/store"
)

var errResetDisabled = errors.New("reset is disabled; set ALLOW_RESET=true to enable it")

// grocery seed: write the default catalog and categories if missing.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the default products and categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, cfg config.Config, st store.Store, log *zap.Logger) error {
			return newServices(cfg, st, log).seed(ctx, log)
		})
	},
}

// grocery reset: remove every grocery document from the store.
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all grocery data (requires ALLOW_RESET)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, cfg config.Config, st store.Store, log *zap.Logger) error {
			if !cfg.AllowReset {
				return errResetDisabled
			}
			if err := store.Reset(ctx, st); err != nil {
				return err
			}
			log.Warn("store reset", zap.String("driver", cfg.Store.Driver))
			fmt.Fprintln(cmd.OutOrStdout(), "store reset")
			return nil
		})
	},
}

func withStore(ctx context.Context, fn func(context.Context, config.Config, store.Store, *zap.Logger) error) error {
	cfg := config.Load()
	log, err := logger.New(cfg.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	st, err := store.Open(ctx, cfg.Store, log)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(ctx, cfg, st, log)
}
