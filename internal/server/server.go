package server

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brickvest/brickvest-be/internal/auth"
	"github.com/brickvest/brickvest-be/internal/config"
	"github.com/brickvest/brickvest-be/internal/http/handlers"
	"github.com/brickvest/brickvest-be/internal/metrics"
	"github.com/brickvest/brickvest-be/internal/middleware"
	"github.com/brickvest/brickvest-be/internal/settlement"
	"github.com/brickvest/brickvest-be/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.Store, engine *settlement.Engine, logger *logrus.Logger) *Server {
	mux := http.NewServeMux()

	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	authn := middleware.NewAuthenticator(tokenManager, store, logger)

	handlers.NewHealthHandler(time.Now()).Register(mux)
	handlers.NewAuthHandler(store, tokenManager, logger).Register(mux, authn)
	handlers.NewWalletHandler(engine, store, logger).Register(mux, authn)
	handlers.NewTransactionHandler(engine, store, logger).Register(mux, authn)
	handlers.NewPropertyHandler(store, logger).Register(mux, authn)
	handlers.NewInvestmentHandler(store, logger).Register(mux, authn)
	handlers.NewAdminHandler(store, engine, logger).Register(mux, authn)
	mux.Handle("GET /metrics", metrics.Handler())

	handler := middleware.CORS(cfg.CORSOrigins, middleware.Logging(logger, mux))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
