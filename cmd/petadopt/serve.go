package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tbourn/go-pet-adoption/internal/auth"
	"github.com/tbourn/go-pet-adoption/internal/config"
	httpapi "github.com/tbourn/go-pet-adoption/internal/http"
	"github.com/tbourn/go-pet-adoption/internal/http/middleware"
	"github.com/tbourn/go-pet-adoption/internal/observability"
	"github.com/tbourn/go-pet-adoption/internal/repo"
	"github.com/tbourn/go-pet-adoption/internal/storage"
	"github.com/tbourn/go-pet-adoption/internal/sysutil"
)

func newServeCommand() *cobra.Command {
	var (
		autoMigrate  bool
		purgeEvery   time.Duration
		drainTimeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return serve(cmd.Context(), cfg, autoMigrate, purgeEvery, drainTimeout)
		},
	}
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", true, "Create or update the schema on startup")
	cmd.Flags().DurationVar(&purgeEvery, "purge-every", time.Hour, "How often expired idempotency keys are purged (0 disables)")
	cmd.Flags().DurationVar(&drainTimeout, "drain-timeout", 30*time.Second, "Grace period for in-flight requests on shutdown")
	return cmd
}

func serve(parent context.Context, cfg config.Config, autoMigrate bool, purgeEvery, drainTimeout time.Duration) error {
	sysutil.ConfigureLogging(cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName)
	appVersion := sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), version)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, appVersion)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("tracer shutdown")
		}
	}()

	db, err := repo.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if autoMigrate {
		if err := repo.AutoMigrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	if err := os.MkdirAll(cfg.Storage.UploadDir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	store := storage.NewOSStore(cfg.Storage.UploadDir, cfg.Storage.PublicBaseURL)

	var verifier middleware.TokenVerifier
	if cfg.Auth.JWTSecret != "" {
		verifier = auth.NewHMACVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	}
	if cfg.Auth.DevHeaders {
		log.Warn().Msg("X-User-ID dev headers are accepted; do not enable in production")
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, store, verifier, cfg)

	if purgeEvery > 0 {
		go purgeIdempotency(ctx, db, purgeEvery)
	}

	srv := newHTTPServer(cfg, r)
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	log.Info().
		Str("addr", ln.Addr().String()).
		Str("version", appVersion).
		Str("db", cfg.DB.Driver).
		Str("api", cfg.APIBasePath).
		Msg("server starting")
	return serveUntilDone(ctx, srv, ln, drainTimeout)
}

// newHTTPServer builds the server from cfg. Request contexts derive from
// context.Background, not from the signal context, so a shutdown signal
// lets in-flight requests finish within the drain timeout.
func newHTTPServer(cfg config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           h,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}

// serveUntilDone serves on ln until ctx is done, then stops accepting
// connections and waits up to drainTimeout for in-flight requests.
func serveUntilDone(ctx context.Context, srv *http.Server, ln net.Listener, drainTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return err
	}
	log.Info().Msg("server exited gracefully")
	return nil
}

// purgeIdempotency deletes expired idempotency records every interval until
// ctx is done.
func purgeIdempotency(ctx context.Context, db *gorm.DB, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.PurgeExpiredIdempotency(ctx, db, now.UTC())
			if err != nil {
				log.Warn().Err(err).Msg("idempotency purge failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("purged", n).Msg("expired idempotency keys removed")
			}
		}
	}
}
