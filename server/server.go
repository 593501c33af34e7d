package server

import (
	"context"
	"net/http"
	"time"

	"github.com/existflow/todoserver/internal/auth"
	"github.com/existflow/todoserver/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Store is the persistence the handlers need
type Store interface {
	ListTodos(ctx context.Context, uid string) ([]model.Todo, error)
	CreateTodo(ctx context.Context, t *model.Todo) error
	GetTodo(ctx context.Context, uid, id string) (*model.Todo, error)
	UpdateTodo(ctx context.Context, t *model.Todo) error
	DeleteTodo(ctx context.Context, uid, id string) error

	ListProjects(ctx context.Context, uid string) ([]model.Project, error)
	CreateProject(ctx context.Context, p *model.Project) error
	AddTodoToProject(ctx context.Context, uid, projectID, todoID string) error
	RemoveTodoFromProject(ctx context.Context, uid, projectID, todoID string) error
}

// TokenParser verifies bearer tokens
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// Options configures a Server
type Options struct {
	Store  Store
	Tokens TokenParser

	// ExpireAt stamps todos created by anonymous users
	ExpireAt func(now time.Time) time.Time

	// DetachOnMove removes a todo from its previous project when an
	// update assigns a different project
	DetachOnMove bool

	// Registry receives the HTTP metrics; a fresh one is used when nil
	Registry *prometheus.Registry
}

// Server is the todo API server
type Server struct {
	store        Store
	tokens       TokenParser
	expireAt     func(time.Time) time.Time
	detachOnMove bool
	now          func() time.Time
	echo         *echo.Echo
}

// New creates a new server
func New(opts Options) *Server {
	s := &Server{
		store:        opts.Store,
		tokens:       opts.Tokens,
		expireAt:     opts.ExpireAt,
		detachOnMove: opts.DetachOnMove,
		now:          time.Now,
	}

	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	s.setupEcho(registry)

	return s
}

func (s *Server) setupEcho(registry *prometheus.Registry) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newValidator()
	e.HTTPErrorHandler = errorHandler

	// requestLogger is outermost so recovered panics are logged with their status
	e.Use(requestLogger)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(newMetrics(registry).middleware)
	e.Use(middleware.CORS())

	// Health check
	e.GET("/health", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Protected endpoints
	api := e.Group("/api/v1")
	api.Use(s.authMiddleware)

	api.GET("/todos", s.handleListTodos)
	api.POST("/todos", s.handleCreateTodo)
	api.PATCH("/todos", s.handleUpdateTodo)
	api.DELETE("/todos", s.handleDeleteTodo)

	api.GET("/projects", s.handleListProjects)
	api.POST("/projects", s.handleCreateProject)

	s.echo = e
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
