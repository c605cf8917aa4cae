package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pinobite/storefront/internal/accounts"
	"github.com/pinobite/storefront/internal/auth"
	"github.com/pinobite/storefront/internal/checkout"
	"github.com/pinobite/storefront/internal/config"
	"github.com/pinobite/storefront/internal/database"
	"github.com/pinobite/storefront/internal/notify"
	"github.com/pinobite/storefront/internal/passwordreset"
	"github.com/pinobite/storefront/internal/store"
)

const version = "1.0.0"

// Deps are the services the HTTP layer dispatches to.
type Deps struct {
	Config        *config.Config
	DB            *database.DB
	Store         *store.Store
	Tokens        *auth.TokenIssuer
	Accounts      *accounts.Service
	Checkout      *checkout.Service
	PasswordReset *passwordreset.Service
	Publisher     notify.Publisher
	Logger        *slog.Logger
}

type Server struct {
	router  *gin.Engine
	deps    Deps
	cfg     config.ServerConfig
	logger  *slog.Logger
	limiter *RateLimiter
}

// NewServer creates a new server instance. ctx bounds the background
// cleanup of the rate limiter.
func NewServer(ctx context.Context, deps Deps) (*Server, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Publisher == nil {
		deps.Publisher = notify.Discard{}
	}
	registerValidation()

	router := gin.New()
	if err := router.SetTrustedProxies(deps.Config.Server.TrustedProxies); err != nil {
		return nil, err
	}

	server := &Server{
		router:  router,
		deps:    deps,
		cfg:     deps.Config.Server,
		logger:  logger,
		limiter: NewRateLimiter(ctx, deps.Config.RateLimit.Window, logger),
	}

	router.Use(
		gin.CustomRecovery(server.recovered),
		requestLogger(logger),
		securityHeaders(),
		cors(deps.Config.Server.AllowedOrigins),
	)
	server.setupRoutes()
	return server, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// healthCheck endpoint for monitoring
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.deps.DB.HealthCheck(ctx); err != nil {
		s.logger.Error("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"error":  "database connection failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "storefront",
		"version": version,
	})
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server starting", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server gracefully...")
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func (s *Server) recovered(c *gin.Context, err any) {
	s.logger.Error("panic recovered", "error", err, "path", c.Request.URL.Path)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
