package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Isaac-1-lang/Ecommerce/internal/response"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is any dependency whose reachability belongs in the health report.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

type HealthData struct {
	Status       string            `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

type HealthHandler struct {
	version string
	checks  map[string]Pinger
}

func NewHealthHandler(version string, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		version: version,
		checks:  checks,
	}
}

func (h *HealthHandler) Register(app *fiber.App) {
	app.Get("/health", h.Health)
}

// Health godoc
//
//	@Summary	Health check
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	docs.Health
//	@Failure	503	{object}	docs.Health
//	@Router		/health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	data := HealthData{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
	}

	if len(h.checks) > 0 {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
		defer cancel()

		data.Dependencies = make(map[string]string, len(h.checks))
		for name, check := range h.checks {
			if err := check.PingContext(ctx); err != nil {
				data.Dependencies[name] = "unavailable"
				data.Status = "degraded"
				continue
			}
			data.Dependencies[name] = "ok"
		}
	}

	if data.Status != "healthy" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(response.Envelope{
			Success: false,
			Data:    data,
			Error: &response.ErrorInfo{
				Code:    response.ErrCodeInternal,
				Message: "one or more dependencies are unavailable",
			},
			Meta: response.Meta{TraceID: response.TraceID(c)},
		})
	}
	return response.OK(c, data)
}
