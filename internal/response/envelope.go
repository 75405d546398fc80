package response

import (
	"github.com/gofiber/fiber/v2"
)

const TraceIDLocal = "traceId"

type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Error   *ErrorInfo  `json:"error"`
	Meta    Meta        `json:"meta"`
}

type ErrorInfo struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type Meta struct {
	TraceID    string      `json:"traceId,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

type ErrorCode string

const (
	ErrCodeInvalidPayload     ErrorCode = "INVALID_PAYLOAD"
	ErrCodeValidation         ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeEmailTaken         ErrorCode = "EMAIL_TAKEN"
	ErrCodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrCodeInvalidSession     ErrorCode = "INVALID_SESSION"
	ErrCodeForbidden          ErrorCode = "FORBIDDEN"
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeRateLimited        ErrorCode = "RATE_LIMITED"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

func OK(c *fiber.Ctx, data interface{}) error {
	return send(c, fiber.StatusOK, data, nil)
}

func Created(c *fiber.Ctx, data interface{}) error {
	return send(c, fiber.StatusCreated, data, nil)
}

func OKWithPagination(c *fiber.Ctx, data interface{}, limit, offset, total int) error {
	meta := Meta{
		TraceID: TraceID(c),
		Pagination: &Pagination{
			Limit:  limit,
			Offset: offset,
			Total:  total,
		},
	}
	return sendWithMeta(c, fiber.StatusOK, data, nil, meta)
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, ErrCodeInvalidPayload, message)
}

func ValidationFailed(c *fiber.Ctx, message string, details []string) error {
	return sendError(c, fiber.StatusBadRequest, ErrCodeValidation, message, details)
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, ErrCodeUnauthorized, message)
}

func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, ErrCodeForbidden, message)
}

func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, ErrCodeNotFound, message)
}

func RateLimited(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusTooManyRequests, ErrCodeRateLimited, message)
}

func InternalError(c *fiber.Ctx) error {
	return Error(c, fiber.StatusInternalServerError, ErrCodeInternal, "internal server error")
}

func ServerError(c *fiber.Ctx, status int, message string) error {
	return Error(c, status, ErrCodeInternal, message)
}

// Error writes an error envelope with an explicit status and code.
func Error(c *fiber.Ctx, status int, code ErrorCode, message string) error {
	return sendError(c, status, code, message, nil)
}

func send(c *fiber.Ctx, status int, data interface{}, errInfo *ErrorInfo) error {
	return sendWithMeta(c, status, data, errInfo, Meta{TraceID: TraceID(c)})
}

func sendWithMeta(c *fiber.Ctx, status int, data interface{}, errInfo *ErrorInfo, meta Meta) error {
	if meta.TraceID == "" {
		meta.TraceID = TraceID(c)
	}

	return c.Status(status).JSON(Envelope{
		Success: errInfo == nil,
		Data:    data,
		Error:   errInfo,
		Meta:    meta,
	})
}

func sendError(c *fiber.Ctx, status int, code ErrorCode, message string, details interface{}) error {
	return send(c, status, nil, &ErrorInfo{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// TraceID returns the request trace id set by the trace middleware.
func TraceID(c *fiber.Ctx) string {
	if id, ok := c.Locals(TraceIDLocal).(string); ok {
		return id
	}
	return ""
}
