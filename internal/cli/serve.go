package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/journeykit/journeymap/internal/api"
	"github.com/journeykit/journeymap/pkg/cache"
	"github.com/journeykit/journeymap/pkg/store"
)

// newServeCmd creates the serve command.
func newServeCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the journey map HTTP API",
		Long: `Serve runs the journey map API with the configured store and cache.

Without a configured Mongo URI the server uses an in-memory store seeded
with a demo journey, which is handy for trying the API out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg := configFromContext(ctx)
			if listen != "" {
				cfg.ListenAddr = listen
			}

			st, closeStore, err := newStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			c, err := newCacheBackend(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer c.Close()

			srv := &http.Server{
				Addr:              cfg.ListenAddr,
				Handler:           api.New(st, api.WithCache(c), api.WithLogger(logger)).Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", cfg.ListenAddr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")
	return cmd
}

// newStore builds the journey store from config. Without a Mongo URI an
// in-memory store seeded with demo data is used.
func newStore(ctx context.Context, cfg Config, logger *charmlog.Logger) (store.Store, func(), error) {
	if cfg.MongoURI == "" {
		mem := store.NewMemoryStore()
		rootID := mem.SeedDemo()
		logger.Info("using in-memory demo store", "root", rootID)
		return mem, func() {}, nil
	}

	ms, err := store.NewMongoStore(ctx, store.MongoConfig{
		URI:      cfg.MongoURI,
		Database: cfg.MongoDatabase,
	})
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("connected to mongo", "database", cfg.MongoDatabase)
	return ms, func() {
		if err := ms.Close(context.Background()); err != nil {
			logger.Warn("mongo close", "err", err)
		}
	}, nil
}

// newCacheBackend builds the cache from config: Redis when configured,
// otherwise a file cache, degrading to no cache when no directory is
// available.
func newCacheBackend(ctx context.Context, cfg Config, logger *charmlog.Logger) (cache.Cache, error) {
	if cfg.RedisAddr != "" {
		c, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			return nil, err
		}
		logger.Debug("using redis cache", "addr", cfg.RedisAddr)
		return c, nil
	}

	dir, err := cacheDir(cfg)
	if err != nil {
		logger.Debug("no cache directory available, caching disabled")
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}
