// Package bootstrap turns configuration into the pieces shared by the server
// and the CLI.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spacesedan/sentiserve/config"
	"github.com/spacesedan/sentiserve/internal/db"
	"github.com/spacesedan/sentiserve/internal/ml"
	"github.com/spacesedan/sentiserve/internal/sentiment"
)

// MLContext builds the training context from cfg. Non-positive values fall
// back to the package defaults.
func MLContext(cfg config.Config) ml.Context {
	mlctx := ml.NewContext(cfg.Seed)
	if cfg.L2 > 0 {
		mlctx.Trainer.L2 = cfg.L2
	}
	if cfg.MaxIter > 0 {
		mlctx.Trainer.MaxIterations = cfg.MaxIter
	}
	mlctx.Logger = slog.Default()
	return mlctx
}

// NewLoader returns the training data loader selected by cfg.DataSource and a
// func releasing whatever it holds open.
func NewLoader(ctx context.Context, cfg config.Config) (sentiment.Loader, func(), error) {
	switch cfg.DataSource {
	case "", config.DATA_SOURCE_FILE:
		return sentiment.FileLoader{Path: cfg.DataPath}, func() {}, nil

	case config.DATA_SOURCE_POSTGRES:
		if cfg.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("[Bootstrap] DATABASE_URL is required for data source %q", cfg.DataSource)
		}
		pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return db.NewPostgresLoader(pool), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("[Bootstrap] unknown data source %q", cfg.DataSource)
	}
}
