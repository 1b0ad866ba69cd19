package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/autoresolve/helpdesk-accounts/docs"
	"github.com/autoresolve/helpdesk-accounts/internal/api/handler"
	"github.com/autoresolve/helpdesk-accounts/internal/api/middleware"
	"github.com/autoresolve/helpdesk-accounts/internal/core/ports"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Accounts ports.AccountService
	Verifier ports.TokenVerifier
	Users    ports.UserRepository
	// Pingers are optional dependencies shown in the health report.
	Pingers map[string]handler.Pinger

	Version       string
	Development   bool
	AuthRateLimit int
	Log           zerolog.Logger

	// Registerer and Gatherer default to the Prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(middleware.SecureHeaders(d.Development))
	e.Use(echomiddleware.BodyLimit("64K"))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "helpdesk",
		Subsystem:  "http",
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Accounts)
	userHandler := handler.NewUserHandler(d.Accounts)
	healthHandler := handler.NewHealthHandler(d.Users, d.Pingers, d.Version, d.Log)
	authMiddleware := middleware.Auth(d.Verifier)

	// --- Meta & health (no auth required) ---
	e.GET("/", handler.Root(d.Version))
	e.GET("/test", healthHandler.Report)
	e.GET("/health", healthHandler.Report)
	e.GET("/health/live", healthHandler.Liveness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth routes ---
	limit := middleware.RateLimitByIP(d.AuthRateLimit)
	e.POST("/register", authHandler.Register, limit)
	e.POST("/login", authHandler.Login, limit)

	// --- Self-service ---
	me := e.Group("/users/me", authMiddleware)
	me.GET("", userHandler.Me)
	me.PUT("", userHandler.UpdateMe)

	return e
}
