// Package server assembles the HTTP API
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Ramsey-B/clover/config"
	"github.com/Ramsey-B/clover/pkg/middleware"
	customerroutes "github.com/Ramsey-B/clover/pkg/routes/customer"
	"github.com/Ramsey-B/clover/pkg/routes/health"
	resolutionroutes "github.com/Ramsey-B/clover/pkg/routes/resolution"
)

// Server wraps the echo instance and its lifecycle
type Server struct {
	echo   *echo.Echo
	cfg    config.Config
	logger ectologger.Logger
}

// New builds the HTTP server with the full middleware stack and all routes
func New(cfg config.Config, logger ectologger.Logger, checker *health.Checker) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = middleware.Error(logger)
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))

	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.Server.ReadHeaderTimeout = time.Duration(cfg.ReadHeaderTimeoutSeconds) * time.Second
	e.Server.MaxHeaderBytes = cfg.MaxHeaderBytes

	checker.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	customerroutes.Register(api.Group("/customers"))
	resolutionroutes.Register(api.Group("/resolution"))

	return &Server{
		echo:   e,
		cfg:    cfg,
		logger: logger,
	}
}

// Start runs the server until it fails or is shut down
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.logger.WithField("addr", addr).Info("HTTP server starting")

	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the underlying echo instance, mainly for tests
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
