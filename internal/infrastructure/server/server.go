package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/chordcraft/core/docs"
	httpHandlers "github.com/chordcraft/core/internal/adapters/http"
	"github.com/chordcraft/core/internal/application/services"
	"github.com/chordcraft/core/internal/domain/entities"
	"github.com/chordcraft/core/internal/infrastructure/config"
	"github.com/chordcraft/core/internal/infrastructure/idgen"
	"github.com/chordcraft/core/internal/infrastructure/logger"
	"github.com/chordcraft/core/internal/infrastructure/metrics"
	"github.com/chordcraft/core/internal/ports"
)

// Server represents the HTTP server
type Server struct {
	echo    *echo.Echo
	config  *config.Config
	logger  *logger.Logger
	metrics *metrics.Metrics
	store   *services.Store
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return services.DescribeValidation(err)
	}
	return nil
}

// New creates a new server instance backed by gateway
func New(cfg *config.Config, gateway ports.DocumentGateway, appLogger *logger.Logger) (*Server, error) {
	if gateway == nil {
		return nil, errors.New("document gateway is required")
	}

	e := echo.New()

	validate := services.NewValidator()
	e.Validator = &CustomValidator{validator: validate}

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true

	// Custom error handler
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	server := &Server{
		echo:    e,
		config:  cfg,
		logger:  appLogger,
		metrics: metrics.New(),
	}

	var observer ports.StoreObserver
	if cfg.Metrics.Enabled {
		observer = server.metrics
	}

	// Initialize services
	ids := idgen.New()
	server.store = services.NewStore(gateway, services.NewNormalizer(ids), observer, appLogger)
	progressionService := services.NewProgressionService(server.store, ids, validate, appLogger)
	shapeService := services.NewShapeService(server.store, ids, validate, appLogger)

	// Initialize handlers
	progressionHandler := httpHandlers.NewProgressionHandler(progressionService, appLogger)
	shapeHandler := httpHandlers.NewShapeHandler(shapeService, appLogger)

	// Setup middleware
	server.setupMiddleware()

	// Setup metrics
	if cfg.Metrics.Enabled {
		server.setupMetrics()
	}

	// Setup routes
	server.setupRoutes(progressionHandler, shapeHandler)

	return server, nil
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Request ID middleware
	s.echo.Use(middleware.RequestID())

	// Logger middleware
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			s.logger.LogHTTPRequest(
				values.Method,
				values.URI,
				values.RequestID,
				values.Status,
				float64(values.Latency.Nanoseconds())/1000000,
				values.Error,
			)
			return nil
		},
	}))

	// CORS middleware
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     s.config.Security.AllowedOrigins(),
		AllowHeaders:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowCredentials: s.config.Security.CORSAllowCredentials,
		// With credentials a wildcard origin is answered with the request origin.
		UnsafeWildcardOriginWithAllowCredentials: s.config.Security.CORSAllowCredentials,
	}))

	// Rate limiting middleware
	if limit := s.config.Security.RateLimitRequests; limit > 0 && s.config.Security.RateLimitWindow > 0 {
		perSecond := rate.Limit(float64(limit) / s.config.Security.RateLimitWindow.Seconds())
		s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(
				middleware.RateLimiterMemoryStoreConfig{Rate: perSecond, Burst: limit, ExpiresIn: s.config.Security.RateLimitWindow},
			),
			IdentifierExtractor: func(ctx echo.Context) (string, error) {
				return ctx.RealIP(), nil
			},
			ErrorHandler: func(context echo.Context, err error) error {
				return context.JSON(http.StatusForbidden, httpHandlers.ErrorResponse{Detail: "rate limit exceeded"})
			},
			DenyHandler: func(context echo.Context, identifier string, err error) error {
				return context.JSON(http.StatusTooManyRequests, httpHandlers.ErrorResponse{Detail: "rate limit exceeded"})
			},
		}))
	}

	// Security headers
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(progressionHandler *httpHandlers.ProgressionHandler, shapeHandler *httpHandlers.ShapeHandler) {
	// Entry document and health check
	s.echo.GET("/", s.serveIndex)
	s.echo.GET("/health", s.healthCheck)

	// Swagger documentation
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	api := s.echo.Group("/api")

	progressions := api.Group("/progressions")
	progressions.GET("", progressionHandler.ListProgressions)
	progressions.POST("", progressionHandler.CreateProgression)
	progressions.PUT("/:id", progressionHandler.UpdateProgression)
	progressions.DELETE("/:id", progressionHandler.DeleteProgression)

	shapes := api.Group("/shapes")
	shapes.GET("", shapeHandler.ListShapes)
	shapes.POST("", shapeHandler.CreateShape)
	shapes.PUT("/:id", shapeHandler.UpdateShape)
	shapes.DELETE("/:id", shapeHandler.DeleteShape)
}

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() {
	s.echo.Use(s.metrics.Middleware())

	path := s.config.Metrics.Path
	if path == "" {
		path = "/metrics"
	}
	s.echo.GET(path, echo.WrapHandler(s.metrics.Handler()))
}

// healthCheck godoc
// @Summary Liveness probe
// @Tags system
// @Produce json
// @Success 200 {object} httpHandlers.HealthResponse
// @Router /health [get]
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, httpHandlers.HealthResponse{Status: "ok"})
}

// serveIndex returns the single-page client
func (s *Server) serveIndex(c echo.Context) error {
	path := s.config.Static.IndexPath
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("%s not found", filepath.Base(path)))
	}
	if err != nil {
		return fmt.Errorf("failed to stat index: %w", err)
	}
	return c.File(path)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Store returns the document store used by the handlers
func (s *Server) Store() *services.Store {
	return s.store
}

// Start starts the HTTP server
func (s *Server) Start() error {
	address := s.config.Server.Address()
	s.echo.Server.ReadTimeout = s.config.Server.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.Server.WriteTimeout
	s.echo.Server.IdleTimeout = s.config.Server.IdleTimeout

	s.logger.Infow("Starting server", "address", address)
	if err := s.echo.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler maps domain and echo errors onto status codes with a
// {"detail": ...} body
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		code, detail := statusFor(err)

		if c.Response().Committed {
			return
		}

		if code >= http.StatusInternalServerError {
			logger.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		// Send response
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, httpHandlers.ErrorResponse{Detail: detail})
		}
		if err != nil {
			logger.Errorw("Error sending response", "error", err)
		}
	}
}

func statusFor(err error) (int, string) {
	var (
		notFound   *entities.NotFoundError
		validation *entities.ValidationError
		httpErr    *echo.HTTPError
	)

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound, notFound.Error()
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity, validation.Error()
	case errors.As(err, &httpErr):
		return httpErr.Code, fmt.Sprint(httpErr.Message)
	default:
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
}
