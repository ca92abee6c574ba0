package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/zsiec/stimecode/internal/config"
	"github.com/zsiec/stimecode/internal/errors"
	"github.com/zsiec/stimecode/internal/health"
	"github.com/zsiec/stimecode/internal/logger"
)

// Server serves the API over HTTP/1.1 and, when enabled, HTTP/3.
type Server struct {
	config       *config.ServerConfig
	router       *mux.Router
	httpServer   *http.Server
	http3Server  *http3.Server
	logger       *logrus.Logger
	redis        redis.UniversalClient
	healthMgr    *health.Manager
	errorHandler *errors.ErrorHandler
	limiter      *clientLimiter

	// Additional handlers can be registered
	additionalRoutes []func(*mux.Router)
}

// New creates a new server instance. redisClient may be nil when marks are
// kept in memory; the Redis health check then reports degraded.
func New(cfg *config.ServerConfig, log *logrus.Logger, redisClient redis.UniversalClient) *Server {
	s := &Server{
		config:           cfg,
		router:           mux.NewRouter(),
		logger:           log,
		redis:            redisClient,
		healthMgr:        health.NewManager(log),
		errorHandler:     errors.NewErrorHandler(log),
		limiter:          newClientLimiter(cfg.RateLimit, cfg.RateBurst),
		additionalRoutes: make([]func(*mux.Router), 0),
	}

	s.registerHealthCheckers()

	return s
}

// Start serves until ctx is cancelled or a listener fails, then shuts down.
func (s *Server) Start(ctx context.Context) error {
	if s.config.EnableHTTP3 {
		h3, err := s.newHTTP3Server()
		if err != nil {
			return err
		}
		s.http3Server = h3
	}

	s.setupRoutes()

	go s.healthMgr.StartPeriodicChecks(ctx, 30*time.Second)
	go s.limiter.run(ctx, time.Minute)

	errCh := make(chan error, 2)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.HTTPPort),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	go func() {
		s.logger.WithField("port", s.config.HTTPPort).Info("Starting HTTP server")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if s.http3Server != nil {
		go func() {
			s.logger.WithField("port", s.config.HTTP3Port).Info("Starting HTTP/3 server")
			if err := s.http3Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- fmt.Errorf("http3 server: %w", err)
			}
		}()
	}

	select {
	case err := <-errCh:
		_ = s.Shutdown()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		return s.Shutdown()
	}
}

func (s *Server) newHTTP3Server() (*http3.Server, error) {
	cert, err := tls.LoadX509KeyPair(s.config.TLSCertFile, s.config.TLSKeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS certificates: %w", err)
	}

	return &http3.Server{
		Addr:    fmt.Sprintf(":%d", s.config.HTTP3Port),
		Handler: s.router,
		TLSConfig: http3.ConfigureTLSConfig(&tls.Config{
			MinVersion:   tls.VersionTLS13,
			Certificates: []tls.Certificate{cert},
		}),
		QUICConfig: &quic.Config{
			MaxIncomingStreams: s.config.MaxIncomingStreams,
			MaxIdleTimeout:     s.config.MaxIdleTimeout,
		},
	}, nil
}

// Shutdown drains the HTTP server within ShutdownTimeout and closes the
// HTTP/3 listener.
func (s *Server) Shutdown() error {
	s.logger.Info("Shutting down server")

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var firstErr error
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			firstErr = fmt.Errorf("failed to shutdown http server: %w", err)
		}
	}
	// http3.Server.Close does not drain; in-flight QUIC streams are reset.
	if s.http3Server != nil {
		if err := s.http3Server.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to shutdown http3 server: %w", err)
		}
	}

	if firstErr == nil {
		s.logger.Info("Server shutdown complete")
	}
	return firstErr
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(logger.RequestLoggerMiddleware(s.logger))
	s.router.Use(s.recoveryMiddleware)
	s.router.Use(s.errorHandler.Middleware)
	s.router.Use(s.metricsMiddleware)
	s.router.Use(s.corsMiddleware)
	s.router.Use(s.altSvcMiddleware)
	s.router.Use(s.rateLimitMiddleware)

	healthHandler := health.NewHandler(s.healthMgr)
	s.router.HandleFunc("/health", healthHandler.HandleHealth).Methods("GET")
	s.router.HandleFunc("/ready", healthHandler.HandleReady).Methods("GET")
	s.router.HandleFunc("/live", healthHandler.HandleLive).Methods("GET")

	s.router.HandleFunc("/version", s.handleVersion).Methods("GET")

	for _, registerFunc := range s.additionalRoutes {
		registerFunc(s.router)
	}

	s.router.NotFoundHandler = http.HandlerFunc(s.errorHandler.HandleNotFound)
	s.router.MethodNotAllowedHandler = http.HandlerFunc(s.errorHandler.HandleMethodNotAllowed)
}

// registerHealthCheckers registers all health checkers
func (s *Server) registerHealthCheckers() {
	s.healthMgr.Register(health.NewRedisChecker(s.redis))
	s.healthMgr.Register(health.NewCodecChecker())
}

// RegisterRoutes adds additional route handlers to the server
func (s *Server) RegisterRoutes(registerFunc func(*mux.Router)) {
	s.additionalRoutes = append(s.additionalRoutes, registerFunc)
}

// HealthManager exposes the health manager so callers can run checks at
// startup.
func (s *Server) HealthManager() *health.Manager {
	return s.healthMgr
}

// GetRouter returns the router for testing.
func (s *Server) GetRouter() *mux.Router {
	return s.router
}
