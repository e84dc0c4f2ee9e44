// Package server is the orchestrator that ties the server components together.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/pingpanel/pingpanel/server/internal/api"
	"github.com/pingpanel/pingpanel/server/internal/auth"
	"github.com/pingpanel/pingpanel/server/internal/category"
	"github.com/pingpanel/pingpanel/server/internal/config"
	"github.com/pingpanel/pingpanel/server/internal/store"
)

// Server is the main server process.
type Server struct {
	cfg          *config.Config
	store        store.Store
	authProvider auth.Provider
	api          *api.Server
	logger       *slog.Logger
	addr         chan net.Addr
}

// New creates a new server from configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := store.New(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	authProvider, err := auth.NewProvider(cfg.Auth, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init auth provider: %w", err)
	}

	// Bootstrap (creates admin user for builtin provider).
	if err := authProvider.Bootstrap(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap auth: %w", err)
	}

	var loginProvider auth.LoginProvider
	if lp, ok := authProvider.(auth.LoginProvider); ok {
		loginProvider = lp
	}

	categories := category.NewService(db, cfg.Quota, category.WithLogger(logger))
	apiSrv := api.NewServer(db, authProvider, loginProvider, categories, cfg, logger)

	s := &Server{
		cfg:          cfg,
		store:        db,
		authProvider: authProvider,
		api:          apiSrv,
		logger:       logger.With("component", "server"),
		addr:         make(chan net.Addr, 1),
	}

	// Startup validation warnings (only for builtin provider).
	if authProvider.Name() == "builtin" {
		if cfg.Auth.InitialAdmin != nil &&
			cfg.Auth.InitialAdmin.Username == "admin" && cfg.Auth.InitialAdmin.Password == "admin" {
			logger.Warn("default admin credentials detected (admin/admin); change them before going to production")
		}
	}
	for _, origin := range cfg.Server.AllowedOrigins {
		if origin == "*" {
			logger.Warn("CORS allowed_origins contains wildcard '*'; restrict to specific origins in production")
			break
		}
	}
	logger.Info("category quotas",
		"free", cfg.Quota.Free.MaxEventCategories,
		"pro", cfg.Quota.Pro.MaxEventCategories,
	)

	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.api.Handler()
}

// Addr returns a channel that receives the listen address once Run is serving.
func (s *Server) Addr() <-chan net.Addr {
	return s.addr
}

// Run starts the HTTP server and blocks until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		_ = s.store.Close()
		return fmt.Errorf("listen: %w", err)
	}

	srv := &http.Server{
		Handler:           s.api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start rate limiter cleanup tasks.
	s.api.StartBackgroundTasks(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		s.addr <- ln.Addr()
		if s.cfg.Server.TLSCert != "" && s.cfg.Server.TLSKey != "" {
			errCh <- srv.ServeTLS(ln, s.cfg.Server.TLSCert, s.cfg.Server.TLSKey)
		} else {
			s.logger.Warn("TLS not configured, running without encryption (development only)")
			errCh <- srv.Serve(ln)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down server gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("graceful shutdown failed, forcing close", "error", err)
			_ = srv.Close()
		} else {
			s.logger.Info("http server stopped gracefully")
		}

		s.logger.Info("closing store")
		_ = s.store.Close()
		s.logger.Info("shutdown complete")
		return ctx.Err()

	case err := <-errCh:
		_ = s.store.Close()
		return err
	}
}
