// Package app wires the shortener together: connection pool, schema
// bootstrap, initial admin user and the HTTP server lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/k0r-eu/k0r/internal/config"
	"github.com/k0r-eu/k0r/internal/database"
	"github.com/k0r-eu/k0r/internal/database/sqlite"
	"github.com/k0r-eu/k0r/internal/service"
	"golang.org/x/sync/errgroup"

	api "github.com/k0r-eu/k0r/internal/api/http"
)

// Run starts the shortener and blocks until ctx is cancelled or a fatal
// error occurs. The schema is validated before any traffic is served: an
// empty store is initialized, a store with an unexpected structure is
// refused. Existing schemas are never migrated.
func Run(ctx context.Context, cfg *config.Config) error {
	const op = "app.Run"

	logger := newLogger(cfg.Env)

	db, err := sqlite.New(
		ctx,
		cfg.Sqlite.DSN(),
		sqlite.WithConnMaxIdleTime(cfg.Sqlite.ConnMaxIdleTime),
		sqlite.WithConnMaxLifetime(cfg.Sqlite.ConnMaxLifetime),
		sqlite.WithMaxIdleConns(cfg.Sqlite.MaxIdleConns),
		sqlite.WithMaxOpenConns(cfg.Sqlite.MaxOpenConns),
	)
	if err != nil {
		return fmt.Errorf("%s: failed to open store: %w", op, err)
	}
	defer db.Close()

	svc := service.New(
		sqlite.NewStore(db),
		cfg.Dispatch.MaxQueries,
		service.WithAcquireTimeout(cfg.Dispatch.AcquireTimeout),
	)

	if err := bootstrap(ctx, logger.Logger, svc); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        api.NewRouter(logger, svc),
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server started", slog.String("addr", server.Addr))

		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}

// bootstrap validates the store before serving and creates the very first
// admin user on a fresh store, logging its API key once.
func bootstrap(ctx context.Context, logger *slog.Logger, svc *service.URLService) error {
	err := svc.CheckSchema(ctx)

	switch {
	case err == nil:
	case errors.Is(err, database.ErrSchemaMissing):
		if err := svc.InitSchema(ctx); err != nil {
			return err
		}

		logger.Info("initialized empty store")
	default:
		return err
	}

	count, err := svc.CountUsers(ctx)
	if err != nil {
		return err
	}

	if count == 0 {
		key, err := svc.CreateUser(ctx, 0, true)
		if err != nil {
			return err
		}

		logger.Info("created initial admin user", slog.String("api_key", key))
	}

	return nil
}

func newLogger(env string) *httplog.Logger {
	opts := httplog.Options{
		LogLevel:       slog.LevelDebug,
		Concise:        true,
		RequestHeaders: false,
	}

	if env == config.EnvProd {
		opts.LogLevel = slog.LevelInfo
		opts.JSON = true
		opts.Concise = false
	}

	return httplog.NewLogger("k0r", opts)
}
