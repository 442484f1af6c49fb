package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-portal/config"
	"github.com/jwalitptl/clinic-portal/internal/client"
	"github.com/jwalitptl/clinic-portal/internal/handler"
	"github.com/jwalitptl/clinic-portal/internal/middleware"
	"github.com/jwalitptl/clinic-portal/internal/render"
	"github.com/jwalitptl/clinic-portal/internal/repository"
	"github.com/jwalitptl/clinic-portal/internal/repository/memory"
	"github.com/jwalitptl/clinic-portal/internal/repository/postgres"
	redisrepo "github.com/jwalitptl/clinic-portal/internal/repository/redis"
	"github.com/jwalitptl/clinic-portal/internal/router"
	"github.com/jwalitptl/clinic-portal/internal/session"
	"github.com/jwalitptl/clinic-portal/pkg/logger"
	"github.com/jwalitptl/clinic-portal/pkg/metrics"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the portal HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, l, err := opts.load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, l)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, l *logger.Logger) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(cfg.Monitoring.Namespace, registry)

	repo, closeStore, err := openSessionStore(ctx, cfg.Session)
	if err != nil {
		return err
	}
	defer closeStore()
	repo = repository.Instrument(repo, cfg.Session.Driver, m)

	manager := session.NewManager(repo, session.CookieConfig{
		Name:   cfg.Session.CookieName,
		Domain: cfg.Session.CookieDomain,
		Secure: cfg.Session.CookieSecure,
		MaxAge: cfg.Session.TTL,
	}, l)

	backend, err := client.New(client.Config{
		BaseURL:            cfg.Backend.BaseURL,
		Timeout:            cfg.Backend.Timeout,
		BreakerMaxFailures: cfg.Backend.BreakerMaxFailures,
		BreakerTimeout:     cfg.Backend.BreakerTimeout,
		UserAgent:          cfg.Backend.UserAgent,
	}, client.WithMetrics(m), client.WithLogger(l))
	if err != nil {
		return fmt.Errorf("failed to create backend client: %w", err)
	}

	renderer, err := render.New()
	if err != nil {
		return err
	}
	if err := middleware.SetupValidation(middleware.DefaultValidationConfig()); err != nil {
		return fmt.Errorf("failed to set up validation: %w", err)
	}

	csrfKey, err := cfg.CSRFKey()
	if err != nil {
		return err
	}
	if csrfKey == nil {
		csrfKey = make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, csrfKey); err != nil {
			return fmt.Errorf("failed to generate csrf key: %w", err)
		}
		l.Warn("security.csrf_secret not set, using a random key; open forms break on restart")
	}

	security := middleware.DefaultSecurityConfig()
	security.HSTS = cfg.Security.HSTS

	h := handler.NewHandler(backend, renderer, manager, l, m)
	r := router.NewRouter(middleware.NewAuthMiddleware(manager), h, m, registry, router.RouterConfig{
		Mode:           cfg.Server.Mode,
		RateLimit:      rate.Limit(cfg.Security.LoginRateLimit),
		RateBurst:      cfg.Security.LoginBurst,
		Timeout:        cfg.Server.RequestTimeout,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		Security:       security,
		MetricsEnabled: cfg.Monitoring.PrometheusEnabled,
		MetricsPath:    cfg.Monitoring.MetricsPath,
		CSRFKey:        csrfKey,
		Secure:         cfg.Session.CookieSecure,
	})
	r.Setup()

	if limiter := r.Limiter(); limiter != nil {
		go limiter.Run(ctx.Done())
	}

	srv := &http.Server{
		Addr:           cfg.Addr(),
		Handler:        r.Handler(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info("starting portal", "addr", srv.Addr, "backend", cfg.Backend.BaseURL, "session_driver", cfg.Session.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	l.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	l.Info("server exited properly")
	return nil
}

// openSessionStore connects the configured session driver. The returned
// func releases its connections.
func openSessionStore(ctx context.Context, cfg config.SessionConfig) (repository.SessionRepository, func(), error) {
	switch cfg.Driver {
	case config.DriverRedis:
		rcfg := redisrepo.Config{
			URL:          cfg.Redis.URL,
			Prefix:       cfg.Redis.Prefix,
			TTL:          cfg.TTL,
			MaxRetries:   cfg.Redis.MaxRetries,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}
		connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		rdb, err := redisrepo.NewClient(connectCtx, rcfg)
		if err != nil {
			return nil, nil, err
		}
		return redisrepo.NewSessionRepository(rdb, rcfg), func() { _ = rdb.Close() }, nil

	case config.DriverPostgres:
		db, err := postgres.NewDB(postgres.Config{
			DSN:             cfg.Postgres.DSN,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return postgres.NewSessionRepository(postgres.NewBaseRepository(db), cfg.TTL), func() { _ = db.Close() }, nil

	default:
		return memory.NewSessionRepository(memory.Config{
			TTL:             cfg.TTL,
			CleanupInterval: cfg.CleanupInterval,
		}), func() {}, nil
	}
}
