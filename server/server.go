package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/KOMKZ/go-yogan-boot/auth"
	"github.com/KOMKZ/go-yogan-boot/health"
	"github.com/KOMKZ/go-yogan-boot/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server gin engine plus http.Server
type Server struct {
	cfg    Config
	engine *gin.Engine
	health *health.Aggregator
	auth   *auth.Service
	log    *logger.CtxZapLogger

	mu       sync.Mutex
	http     *http.Server
	listener net.Listener
	errs     chan error
}

// New builds the engine and the /healthz route; nothing listens until Start.
// svc may be nil, in which case Protected is unavailable.
func New(cfg Config, log *logger.CtxZapLogger, svc *auth.Service) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.GetLogger("server")
	}

	gin.DefaultWriter = logger.NewGinLogWriter(log)
	gin.DefaultErrorWriter = logger.NewGinLogWriter(log)
	gin.SetMode(cfg.Mode)

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.Use(TraceID())
	if cfg.EnableRequestLog {
		engine.Use(RequestLog(log, cfg.SkipLogPaths...))
	}
	engine.Use(Recovery(log))
	engine.NoRoute(noRoute)
	engine.NoMethod(noMethod)

	s := &Server{
		cfg:    cfg,
		engine: engine,
		health: health.NewAggregator(cfg.HealthTimeout),
		auth:   svc,
		log:    log,
		errs:   make(chan error, 1),
	}
	engine.GET("/healthz", s.handleHealth)
	return s, nil
}

func (s *Server) handleHealth(c *gin.Context) {
	resp := s.health.Check(c.Request.Context())
	status := http.StatusOK
	if resp.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

// Engine for route registration
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Health aggregator behind /healthz
func (s *Server) Health() *health.Aggregator {
	return s.health
}

// Protected route group requiring a bearer access token
func (s *Server) Protected(relativePath string) (*gin.RouterGroup, error) {
	if s.auth == nil {
		return nil, errors.New("protected routes require the auth component")
	}
	return s.engine.Group(relativePath, RequireAuth(s.auth)), nil
}

// Start implements component.Starter: binding errors are returned, serving
// continues in the background
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.http != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr(), err)
	}
	s.listener = ln
	s.http = &http.Server{
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("http server stopped unexpectedly", zap.Error(err))
			s.errs <- err
		}
	}(s.http)

	s.log.InfoCtx(ctx, "http server started",
		zap.String("addr", ln.Addr().String()),
		zap.String("mode", s.cfg.Mode),
		zap.Strings("health_checks", s.health.Names()))
	return nil
}

// Addr bound address, empty before Start
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Errors receives the error that ended serving, if any
func (s *Server) Errors() <-chan error {
	return s.errs
}

// Stop implements component.Stopper: drains in-flight requests until ctx ends
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	s.log.InfoCtx(ctx, "http server stopped")
	return nil
}
