package server

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/Isaac-1-lang/Ecommerce/internal/middleware"
	"github.com/Isaac-1-lang/Ecommerce/internal/response"
)

const (
	apiRateLimitMax     = 120
	apiRateLimitWindow  = 1 * time.Minute
	authRateLimitMax    = 10
	authRateLimitWindow = 1 * time.Minute
)

type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CorsOrigins  string
}

type Server struct {
	app    *fiber.App
	config Config
	logger *slog.Logger
}

func New(cfg Config, log *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "Storefront Session API",
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		IdleTimeout:           cfg.IdleTimeout,
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler(log),
	})

	s := &Server{
		app:    app,
		config: cfg,
		logger: log,
	}

	s.setupMiddlewares()

	return s
}

func (s *Server) setupMiddlewares() {
	s.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	s.app.Use(middleware.TraceID())

	s.app.Use(securityHeaders)

	corsOrigins := s.config.CorsOrigins
	if corsOrigins == "*" || corsOrigins == "" {
		s.logger.Warn("CORS_ORIGINS is wildcard or empty; in production, set explicit origins")
		corsOrigins = "*"
	}
	s.app.Use(cors.New(cors.Config{
		AllowOrigins:  corsOrigins,
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:  "Content-Type,Authorization,X-Trace-ID",
		ExposeHeaders: "X-Trace-ID",
	}))

	s.app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | trace=${locals:traceId}\n",
		TimeFormat: "2006-01-02 15:04:05",
		Next:       skipStreaming,
	}))

	s.app.Use(limiter.New(limiter.Config{
		Max:        apiRateLimitMax,
		Expiration: apiRateLimitWindow,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return response.RateLimited(c, "too many requests")
		},
		Next: skipStreaming,
	}))
}

func skipStreaming(c *fiber.Ctx) bool {
	switch c.Path() {
	case "/health", "/api/auth/session/events", "/api/auth/session/ws":
		return true
	}
	return false
}

// AuthRateLimiter throttles credential endpoints per client IP.
func AuthRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        authRateLimitMax,
		Expiration: authRateLimitWindow,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return response.RateLimited(c, "too many authentication attempts")
		},
	})
}

func securityHeaders(c *fiber.Ctx) error {
	c.Set("X-Content-Type-Options", "nosniff")
	c.Set("X-Frame-Options", "DENY")
	c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	c.Set("Cache-Control", "no-store")
	if c.Protocol() == "https" {
		c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
	}
	return c.Next()
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("Server listening", "addr", addr)
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	s.logger.Info("Shutting down server...")
	return s.app.Shutdown()
}

func customErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		errCode := response.ErrCodeInternal
		message := "internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message

			switch code {
			case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
				errCode = response.ErrCodeInvalidPayload
			case fiber.StatusUnauthorized:
				errCode = response.ErrCodeUnauthorized
			case fiber.StatusForbidden:
				errCode = response.ErrCodeForbidden
			case fiber.StatusNotFound:
				errCode = response.ErrCodeNotFound
			case fiber.StatusTooManyRequests:
				errCode = response.ErrCodeRateLimited
			}
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("Request error",
				"path", c.Path(),
				"method", c.Method(),
				"error", err.Error(),
				"status", code,
				"traceId", response.TraceID(c),
			)
		}

		return response.Error(c, code, errCode, message)
	}
}
