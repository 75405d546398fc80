package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Isaac-1-lang/Ecommerce/internal/response"
)

const TraceIDHeader = "X-Trace-ID"

// TraceID reuses an incoming X-Trace-ID or X-Request-ID, or mints one, and
// echoes it on the response.
func TraceID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := c.Get(TraceIDHeader)
		if traceID == "" {
			traceID = c.Get(fiber.HeaderXRequestID)
		}
		if traceID == "" {
			traceID = uuid.New().String()
		}

		c.Locals(response.TraceIDLocal, traceID)
		c.Set(TraceIDHeader, traceID)

		return c.Next()
	}
}
