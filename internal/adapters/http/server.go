// Package http serves the parameter and telemetry registry over HTTP.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bft-labs/overdrive/internal/registry"
	"github.com/bft-labs/overdrive/pkg/log"
)

const maxBodyBytes = 64

// Store is the registry surface the API needs. *registry.Registry satisfies it.
type Store interface {
	Params() []registry.Value
	Logs() []registry.Value
	Get(key string) (uint32, error)
	SetParamString(key, s string) error
}

// Server exposes /params, /logs, /metrics and a liveness probe.
type Server struct {
	echo     *echo.Echo
	addr     string
	store    Store
	gatherer prometheus.Gatherer
	logger   log.Logger
}

// NewServer creates a Server. A nil gatherer serves the default registry.
func NewServer(addr string, store Store, gatherer prometheus.Gatherer, logger log.Logger) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, addr: addr, store: store, gatherer: gatherer, logger: logger}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	s.echo.GET("/params", s.handleListParams)
	s.echo.GET("/params/:name", s.handleGetParam)
	s.echo.PUT("/params/:name", s.handleSetParam)
	s.echo.GET("/logs", s.handleListLogs)
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until Shutdown. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	s.logger.Info("http api listening", log.String("addr", s.addr))
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http api: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http api: %w", err)
	}
	return nil
}

func (s *Server) handleLiveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListParams(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.Params())
}

func (s *Server) handleListLogs(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.Logs())
}

type paramResponse struct {
	Name  string `json:"name"`
	Value uint32 `json:"value"`
}

func (s *Server) handleGetParam(c echo.Context) error {
	name := c.Param("name")
	v, err := s.store.Get(name)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, paramResponse{Name: name, Value: v})
}

// handleSetParam takes the new value as a plain-text body, e.g. "1" or "0x32".
func (s *Server) handleSetParam(c echo.Context) error {
	name := c.Param("name")
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "read body"})
	}
	raw := strings.TrimSpace(string(body))
	if raw == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing value"})
	}
	if err := s.store.SetParamString(name, raw); err != nil {
		return errorResponse(c, err)
	}

	v, _ := s.store.Get(name)
	s.logger.Info("param set", log.String("name", name), log.Uint("value", v))
	return c.JSON(http.StatusOK, paramResponse{Name: name, Value: v})
}

func errorResponse(c echo.Context, err error) error {
	code := http.StatusBadRequest
	switch {
	case errors.Is(err, registry.ErrUnknownName):
		code = http.StatusNotFound
	case errors.Is(err, registry.ErrReadOnly):
		code = http.StatusForbidden
	}
	return c.JSON(code, map[string]string{"error": err.Error()})
}
