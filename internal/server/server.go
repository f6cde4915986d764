// Package server serves the task board REST API from a local store.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tgienger/kanban/internal/board"
	"github.com/tgienger/kanban/internal/models"
)

// Store is what the handlers need from the backing store
type Store interface {
	board.Gateway
	OpenAttachment(ctx context.Context, id string) (*models.Attachment, string, error)
	CreateLabel(ctx context.Context, name, color string) (*models.Label, error)
	UpdateLabel(ctx context.Context, id, name, color string) (*models.Label, error)
	DeleteLabel(ctx context.Context, id string) error
}

// Server holds the router and its dependencies
type Server struct {
	store  Store
	token  string
	logger *slog.Logger
	router *gin.Engine
}

// Option configures a Server
type Option func(*Server)

// WithToken requires every API request to carry this bearer token
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New builds the router
func New(store Store, opts ...Option) *Server {
	s := &Server{
		store:  store,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Kanban API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	api.Use(s.requireToken())
	{
		tasks := api.Group("/tasks")
		{
			tasks.GET("", s.listTasks)
			tasks.POST("", s.createTask)
			tasks.GET("/:id", s.getTask)
			tasks.PUT("/:id", s.updateTask)
			tasks.PATCH("/:id", s.updateTask)
			tasks.DELETE("/:id", s.deleteTask)
			tasks.PATCH("/:id/status", s.updateStatus)
			tasks.PATCH("/:id/assignee", s.updateAssignee)
			tasks.GET("/:id/comments", s.listComments)
			tasks.POST("/:id/comments", s.addComment)
			tasks.GET("/:id/attachments", s.listAttachments)
			tasks.POST("/:id/attachments", s.uploadAttachment)
		}

		api.GET("/attachments/:id/download", s.downloadAttachment)

		labels := api.Group("/labels")
		{
			labels.GET("", s.listLabels)
			labels.POST("", s.createLabel)
			labels.PUT("/:id", s.updateLabel)
			labels.DELETE("/:id", s.deleteLabel)
		}

		api.GET("/users", s.listUsers)
	}
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"took", time.Since(start),
		)
	}
}
