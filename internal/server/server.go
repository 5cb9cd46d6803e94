// Package server exposes the task-execution core over HTTP.
//
// The surface is deliberately small: one submission endpoint, two
// read-only status endpoints, plus health and metrics. The core itself
// is transport-agnostic; this package is the only piece that knows
// about HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/devrunnerd/internal/config"
	"github.com/fyrsmithlabs/devrunnerd/internal/logging"
	"github.com/fyrsmithlabs/devrunnerd/internal/service"
)

// Server is the HTTP front for the execution core.
type Server struct {
	cfg  config.ServerConfig
	svc  *service.Service
	log  *logging.Logger
	echo *echo.Echo
}

// InstructRequest is the submission payload.
type InstructRequest struct {
	Instruction string         `json:"instruction"`
	Requester   string         `json:"requester"`
	Context     map[string]any `json:"context,omitempty"`
}

// InstructResponse acknowledges a submission.
type InstructResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// HealthResponse is the JSON response for /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// NewServer creates the HTTP server and registers all routes. gatherer
// backs /metrics; pass the same registry the service metrics were
// registered on.
func NewServer(cfg config.ServerConfig, svc *service.Service, log *logging.Logger, gatherer prometheus.Gatherer) *Server {
	if log == nil {
		log = logging.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	if cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiter(
			middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimit))))
	}

	s := &Server{
		cfg:  cfg,
		svc:  svc,
		log:  log,
		echo: e,
	}
	s.registerRoutes(gatherer)
	return s
}

func (s *Server) registerRoutes(gatherer prometheus.Gatherer) {
	s.echo.GET("/health", s.handleHealth)
	if gatherer != nil {
		s.echo.GET("/metrics", echo.WrapHandler(
			promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	dev := s.echo.Group("/api/v1/dev")
	if s.cfg.AuthToken != "" {
		dev.Use(s.bearerAuth)
	}
	dev.POST("/instruct", s.handleInstruct)
	dev.GET("/tasks", s.handleListTasks)
	dev.GET("/tasks/:id", s.handleGetTask)
}

// bearerAuth requires Authorization: Bearer <token> on the dev API.
func (s *Server) bearerAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token != s.cfg.AuthToken {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid bearer token")
		}
		return next(c)
	}
}

// handleInstruct accepts a development instruction and returns the task
// id immediately; gating and execution happen asynchronously.
func (s *Server) handleInstruct(c echo.Context) error {
	var req InstructRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Instruction) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "instruction is required")
	}
	requester := req.Requester
	if requester == "" {
		requester = "anonymous"
	}

	id := s.svc.Submit(req.Instruction, requester, req.Context)

	ctx := logging.WithRequestID(c.Request().Context(), c.Response().Header().Get(echo.HeaderXRequestID))
	s.log.Info(ctx, "instruction accepted",
		zap.String("task_id", id),
		zap.String("requester", requester))

	return c.JSON(http.StatusAccepted, InstructResponse{
		TaskID: id,
		Status: "accepted",
	})
}

func (s *Server) handleGetTask(c echo.Context) error {
	view, ok := s.svc.GetStatus(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "task not found")
	}
	return c.JSON(http.StatusOK, map[string]any{"task": view})
}

func (s *Server) handleListTasks(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}
	return c.JSON(http.StatusOK, map[string]any{"tasks": s.svc.ListRecent(limit)})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: "devrunnerd",
	})
}

// Echo exposes the router for httptest-based tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Start runs the server until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)

	errCh := make(chan error, 1)
	go func() {
		if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server start: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
