// Package web serves the dashboard pages and the JSON and Parquet endpoints over gin.
package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"SRRStocks/internal/collector"
	"SRRStocks/internal/dashboard"
	"SRRStocks/internal/recorder"
)

// Options configures a Server.
type Options struct {
	Addr      string
	Catalog   dashboard.Catalog
	Collector *collector.Collector
	Recorder  recorder.Recorder
	Logger    *zap.Logger
	Now       func() time.Time // defaults to time.Now
}

// Server manages the HTTP server and routes.
type Server struct {
	handler *Handler
	engine  *gin.Engine
	server  *http.Server
	logger  *zap.Logger
}

// New creates a new HTTP server.
func New(opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	h, err := NewHandler(opts)
	if err != nil {
		return nil, err
	}

	s := &Server{handler: h, logger: opts.Logger}
	s.engine = s.setupRouter()
	s.server = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // a year of history for many symbols can be slow upstream
		IdleTimeout:  120 * time.Second,
	}
	return s, nil
}

func (s *Server) setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(Logger(s.logger))
	router.SetHTMLTemplate(s.handler.templates)

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/stocks")
	})
	for _, sec := range sections {
		path := "/" + string(sec.ID)
		router.GET(path, s.handler.Page(sec.ID))
		router.POST(path, s.handler.Page(sec.ID))
	}
	router.GET("/stocks/export.parquet", s.handler.ExportParquet)

	api := router.Group("/api")
	{
		api.GET("/health", s.handler.Health)
		api.GET("/history", s.handler.History)
	}
	return router
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting",
		zap.String("address", s.server.Addr),
		zap.String("url", fmt.Sprintf("http://%s", s.server.Addr)))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.engine
}
