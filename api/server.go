package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"fogsched/loader"
	"fogsched/logger"
	"fogsched/observability"
	"fogsched/strategy"
)

// Server is the HTTP front of the scheduling engine.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     Config
	registry   *strategy.Registry
	defaults   strategy.Config
	files      loader.Loader
	hub        *Hub
	metrics    *observability.Metrics
	// slots bounds concurrent scheduling runs.
	slots chan struct{}
	log   *logger.Logger
}

// Option customizes a Server.
type Option func(*Server)

// WithMetrics attaches domain instruments recorded around every run.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithSchedulingDefaults sets the strategy configuration merged under every
// request.
func WithSchedulingDefaults(cfg strategy.Config) Option {
	return func(s *Server) { s.defaults = cfg }
}

// New creates a Server over the strategy registry. A nil registry means all
// built-in strategies.
func New(cfg Config, registry *strategy.Registry, log *logger.Logger, opts ...Option) *Server {
	cfg.ApplyDefaults()
	if registry == nil {
		registry = strategy.DefaultRegistry()
	}
	if log == nil {
		log = logger.Get("api")
	} else {
		log = log.WithComponent("api")
	}

	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	s := &Server{
		engine:   engine,
		config:   cfg,
		registry: registry,
		defaults: strategy.DefaultConfig(),
		files:    loader.NewFileLoader(cfg.ExperimentDirs...),
		hub:      NewHub(),
		slots:    make(chan struct{}, cfg.MaxRuns),
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
	}

	s.applyMiddleware()
	s.registerRoutes()
	return s
}

// Engine returns the underlying Gin engine, mainly for tests.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Hub returns the run-event hub.
func (s *Server) Hub() *Hub { return s.hub }

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.httpServer.Addr }

func (s *Server) applyMiddleware() {
	s.engine.Use(Recovery())
	s.engine.Use(RequestID())
	s.engine.Use(Operations("fogsched", s.metrics))
	s.engine.Use(RequestLogger(s.log))
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/version", s.handleVersion)

	v1 := s.engine.Group(s.config.Prefix)
	v1.GET("/strategies", s.handleStrategies)
	v1.POST("/schedule", s.handleSchedule)
	v1.POST("/placement", s.handlePlacement)
	v1.GET("/runs/:id/events", s.handleRunEvents)

	reg := logger.ComponentRegistryInstance
	reg.SetAPIPrefix(s.config.Prefix)
	for _, r := range s.engine.Routes() {
		reg.RegisterHandler(r.Method, r.Path, r.Handler)
	}
	for _, name := range s.registry.List() {
		reg.RegisterStrategy(name, strategyKind(name), "active")
	}
}

// strategyKind tags registry names for the startup summary.
func strategyKind(name string) string {
	switch name {
	case strategy.NameMinMin, strategy.NameFirstFit:
		return "greedy"
	case strategy.NamePSO, strategy.NameEnhancedPSO:
		return "swarm"
	case strategy.NameHFCO:
		return "hybrid"
	default:
		return "evolutionary"
	}
}

// Start binds the port and begins serving. It returns once the listener is
// bound; serving continues in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("api: binding %s: %w", s.httpServer.Addr, err)
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("server error", logger.ErrorFields("serve", err))
		}
	}()

	s.log.Info("server started", map[string]interface{}{
		"addr":       s.httpServer.Addr,
		"strategies": len(s.registry.List()),
		"max_runs":   s.config.MaxRuns,
	})
	return nil
}

// Stop drains subscribers and shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("shutting down")
	s.hub.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api: shutdown: %w", err)
	}
	return nil
}

// acquireSlot claims a run slot without blocking.
func (s *Server) acquireSlot() bool {
	select {
	case s.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *Server) releaseSlot() {
	<-s.slots
}
