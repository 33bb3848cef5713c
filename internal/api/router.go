package api

import (
	"fmt"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/sevakendra/portal-api/internal/api/handler"
	"github.com/sevakendra/portal-api/internal/api/middleware"
	"github.com/sevakendra/portal-api/internal/core/ports"

	_ "github.com/sevakendra/portal-api/docs"
)

// multipartOverhead is the allowance for form fields on top of both images.
const multipartOverhead = 1 << 20

// Deps carries everything the router wires into handlers.
type Deps struct {
	Identity     ports.IdentityService
	Applications ports.ApplicationService
	AuthEvents   ports.AuthEventBus
	Checks       map[string]handler.DependencyCheck

	MaxUploadBytes   int64
	SessionHeartbeat time.Duration
	Log              zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddleware("seva"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Identity)
	appHandler := handler.NewApplicationHandler(d.Applications, d.MaxUploadBytes)
	streamHandler := handler.NewSessionStreamHandler(d.Identity, d.AuthEvents, d.SessionHeartbeat, d.Log)
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Checks)

	authMiddleware := middleware.Auth(d.Identity)
	citizenView := middleware.Guard(d.Identity, middleware.ViewCitizen)
	providerView := middleware.Guard(d.Identity, middleware.ViewProvider)

	// --- Health probes, metrics and docs (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Identity gateway ---
	auth := e.Group("/auth")
	auth.POST("/otp", authHandler.SendOTP)
	auth.POST("/otp/verify", authHandler.VerifyOTP)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout, authMiddleware)
	auth.GET("/session", authHandler.Session, authMiddleware)
	auth.PATCH("/metadata", authHandler.UpdateMetadata, authMiddleware)

	v1 := e.Group("/v1")
	v1.GET("/session/stream", streamHandler.Stream)

	// --- Citizen view ---
	applications := v1.Group("/applications", authMiddleware, citizenView)
	applications.POST("", appHandler.Submit, submitBodyLimit(d.MaxUploadBytes))
	applications.GET("", appHandler.ListOwn)
	applications.GET("/:id", appHandler.GetOwn)

	// --- Provider view ---
	admin := v1.Group("/admin", authMiddleware, providerView)
	admin.GET("/applications", appHandler.ListAll)
	admin.GET("/applications/:id", appHandler.Get)
	admin.PATCH("/applications/:id/status", appHandler.UpdateStatus)
	admin.POST("/providers", authHandler.CreateProvider)

	return e
}

func submitBodyLimit(maxUploadBytes int64) echo.MiddlewareFunc {
	limit := 2*maxUploadBytes + multipartOverhead
	return echomiddleware.BodyLimit(fmt.Sprintf("%dK", limit/1024+1))
}

// requestLogger writes one structured line per request into log.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Error != nil || v.Status >= 500 {
				event = log.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
