package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/cristianadrielbraun/qrstyle/internal/cache"
	"github.com/cristianadrielbraun/qrstyle/internal/config"
	"github.com/cristianadrielbraun/qrstyle/internal/handlers"
	"github.com/cristianadrielbraun/qrstyle/internal/qrstyle"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var configPath, addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the QR HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config and PORT)")
	return cmd
}

func runServe(ctx context.Context, cfg config.Config) error {
	logger := loggerFromContext(ctx)
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil && lvl < logger.GetLevel() {
		logger.SetLevel(lvl)
	}

	store, err := openCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer store.Close()

	h := handlers.New(handlers.Options{
		Renderer:  qrstyle.NewRenderer(newLogoLoader(cfg)),
		Cache:     store,
		CacheTTL:  cfg.Cache.TTL.Duration,
		UploadDir: cfg.UploadDir,
		MaxUpload: cfg.Logo.MaxBytes,
		Logger:    logger,
	})

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("qrstyle listening", "addr", cfg.Addr, "cache", cfg.Cache.Backend, "uploads", cfg.UploadDir)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newLogoLoader resolves uploaded files and, when allowed, public remote
// logos. Requests come from untrusted clients, so remote fetches never reach
// loopback, private or link-local addresses.
func newLogoLoader(cfg config.Config) *qrstyle.SourceLoader {
	timeout := cfg.Logo.FetchTimeout.Duration
	loader := qrstyle.NewSourceLoader(cfg.UploadDir, timeout, cfg.Logo.MaxBytes)
	loader.Client = qrstyle.NewPublicClient(timeout)
	loader.DisableRemote = !cfg.Logo.AllowRemote
	return loader
}

// openCache builds the preview cache selected by cfg.Backend.
func openCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "memory":
		return cache.NewMemoryCache(cfg.MaxEntries), nil
	case "redis":
		return cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case "none":
		return cache.NewNullCache(), nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}
