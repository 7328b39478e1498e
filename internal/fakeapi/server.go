// Package fakeapi is an in-memory implementation of the to-do REST API for
// tests and local development.
package fakeapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/existflow/todoisland/internal/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Options configures the backend
type Options struct {
	Secret   []byte        // HS256 signing key, random when empty
	TokenTTL time.Duration // access token lifetime, 24h when zero
}

// Server is the development backend
type Server struct {
	store    *memStore
	secret   []byte
	tokenTTL time.Duration
	echo     *echo.Echo

	mu         sync.Mutex
	generation int64 // bumped by RevokeAll
	failNext   int
	down       bool
	requests   []Request
}

// Request is a recorded incoming request
type Request struct {
	Method        string
	Path          string
	Authorization string
}

// New creates a backend
func New(opts Options) *Server {
	s := &Server{
		store:    newMemStore(),
		secret:   opts.Secret,
		tokenTTL: opts.TokenTTL,
	}
	if len(s.secret) == 0 {
		s.secret = randomSecret()
	}
	if s.tokenTTL == 0 {
		s.tokenTTL = 24 * time.Hour
	}
	s.setupEcho()
	return s
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Custom logging middleware
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			s.record(req)

			err := next(c)

			res := c.Response()
			logger.Debug("Dev API request",
				logger.F("method", req.Method),
				logger.F("uri", req.RequestURI),
				logger.F("status", res.Status),
				logger.F("requestID", req.Header.Get(echo.HeaderXRequestID)),
				logger.F("duration", time.Since(start).String()))
			return err
		}
	})

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.faultMiddleware)

	e.GET("/actuator/health", s.handleHealth)

	auth := e.Group("/auth")
	auth.POST("/login", s.handleLogin)
	auth.POST("/register", s.handleRegister)
	auth.POST("/google", s.handleGoogle)

	tasks := e.Group("/tasks")
	tasks.Use(s.authMiddleware)
	tasks.GET("", s.handleListTasks)
	tasks.POST("", s.handleCreateTask)
	tasks.POST("/:id/toggle", s.handleToggleTask)
	tasks.PUT("/:id", s.handleUpdateTask)
	tasks.DELETE("/:id", s.handleDeleteTask)

	s.echo = e
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until Close
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Close stops the listener started by Start
func (s *Server) Close() error {
	return s.echo.Close()
}

// Shutdown stops the server, waiting for in-flight requests until ctx ends
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// FailNext makes the next request (any route) answer with status
func (s *Server) FailNext(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = status
}

// SetDown makes the health probe report DOWN
func (s *Server) SetDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = down
}

// RevokeAll invalidates every issued access token
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
}

// Requests returns the requests received so far
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *Server) record(req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, Request{
		Method:        req.Method,
		Path:          req.URL.Path,
		Authorization: req.Header.Get("Authorization"),
	})
}

func (s *Server) faultMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		status := s.failNext
		s.failNext = 0
		s.mu.Unlock()

		if status != 0 {
			return errorJSON(c, status, http.StatusText(status))
		}
		return next(c)
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	s.mu.Lock()
	down := s.down
	s.mu.Unlock()

	if down {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "DOWN"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status": "UP",
		"components": map[string]any{
			"store": map[string]string{"status": "UP"},
		},
	})
}

// errorJSON writes the {statusCode, message} error shape
func errorJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]any{"statusCode": status, "message": message})
}
