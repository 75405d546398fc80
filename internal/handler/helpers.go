package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/Isaac-1-lang/Ecommerce/internal/domain"
	"github.com/Isaac-1-lang/Ecommerce/internal/response"
)

// HandleDomainError maps service errors onto the response envelope. Errors
// it does not recognise become a generic 500 and are logged with the trace id.
func HandleDomainError(c *fiber.Ctx, logger *slog.Logger, err error) error {
	var verr *domain.ValidationError

	switch {
	case errors.As(err, &verr):
		return response.ValidationFailed(c, MsgValidationError, verr.Details)
	case errors.Is(err, domain.ErrInvalidCredentials):
		return response.Error(c, fiber.StatusUnauthorized, response.ErrCodeInvalidCredentials, MsgInvalidCredentials)
	case errors.Is(err, domain.ErrAlreadyExists):
		return response.Error(c, fiber.StatusBadRequest, response.ErrCodeEmailTaken, MsgEmailRegistered)
	case errors.Is(err, domain.ErrUnauthorized):
		return response.Unauthorized(c, MsgNoToken)
	case errors.Is(err, domain.ErrInvalidSession):
		return response.Error(c, fiber.StatusUnauthorized, response.ErrCodeInvalidSession, MsgInvalidSession)
	case errors.Is(err, domain.ErrInvalidInput):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, MsgResourceNotFound)
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, err.Error())
	default:
		if logger != nil {
			logger.Error("request failed",
				"error", err,
				"path", c.Path(),
				"trace_id", response.TraceID(c),
			)
		}
		return response.InternalError(c)
	}
}
