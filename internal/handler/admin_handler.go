package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Isaac-1-lang/Ecommerce/internal/domain"
	"github.com/Isaac-1-lang/Ecommerce/internal/response"
	"github.com/Isaac-1-lang/Ecommerce/internal/service"
)

// AdminHandler serves the admin-only inspection endpoints.
type AdminHandler struct {
	audit    *service.AuditService
	sessions *service.SessionService
	logger   *slog.Logger
}

type AdminHandlerConfig struct {
	Audit    *service.AuditService
	Sessions *service.SessionService
	Logger   *slog.Logger
}

func NewAdminHandler(cfg AdminHandlerConfig) *AdminHandler {
	return &AdminHandler{
		audit:    cfg.Audit,
		sessions: cfg.Sessions,
		logger:   cfg.Logger,
	}
}

// Register mounts the admin routes behind guards, typically bearer
// authentication followed by the admin role check.
func (h *AdminHandler) Register(router fiber.Router, guards ...fiber.Handler) {
	admin := router.Group("/admin", guards...)
	admin.Get("/audit-logs", h.ListAuditLogs)
	admin.Get("/users/:id/sessions", h.ListUserSessions)
}

type AuditLogResponse struct {
	ID           string      `json:"id"`
	EventType    string      `json:"eventType"`
	ResourceType string      `json:"resourceType"`
	ResourceID   *string     `json:"resourceId,omitempty"`
	UserID       *string     `json:"userId,omitempty"`
	UserEmail    *string     `json:"userEmail,omitempty"`
	Details      interface{} `json:"details,omitempty"`
	IPAddress    *string     `json:"ipAddress,omitempty"`
	UserAgent    *string     `json:"userAgent,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
}

type SessionResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	IPAddress string    `json:"ipAddress,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListAuditLogs godoc
//
//	@Summary		List audit logs
//	@Description	Returns audit events, newest first, filtered by event type, user and date range
//	@Tags			admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			eventType	query		string	false	"Event type, e.g. user.logged_in"
//	@Param			userId		query		string	false	"User ID"
//	@Param			startDate	query		string	false	"RFC3339 lower bound"
//	@Param			endDate		query		string	false	"RFC3339 upper bound"
//	@Param			limit		query		int		false	"Page size (default 50, max 500)"
//	@Param			offset		query		int		false	"Offset"
//	@Success		200			{array}		docs.AuditLog
//	@Failure		401			{object}	docs.ErrorInfo
//	@Failure		403			{object}	docs.ErrorInfo
//	@Router			/admin/audit-logs [get]
func (h *AdminHandler) ListAuditLogs(c *fiber.Ctx) error {
	filter, err := buildAuditFilter(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	logs, total, err := h.audit.Query(c.UserContext(), filter)
	if err != nil {
		h.logger.Error("failed to query audit logs", "error", err)
		return response.ServerError(c, fiber.StatusInternalServerError, MsgFailedToFetchAudits)
	}

	limit, offset := filter.Page()
	return response.OKWithPagination(c, toAuditLogResponses(logs), limit, offset, total)
}

// ListUserSessions godoc
//
//	@Summary		List a user's sessions
//	@Description	Returns the live sessions of a user; at most one exists at any time
//	@Tags			admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{array}		docs.Session
//	@Failure		404	{object}	docs.ErrorInfo
//	@Router			/admin/users/{id}/sessions [get]
func (h *AdminHandler) ListUserSessions(c *fiber.Ctx) error {
	userID := c.Params("id")
	if _, err := uuid.Parse(userID); err != nil {
		return response.NotFound(c, MsgResourceNotFound)
	}

	sessions, err := h.sessions.ListUserSessions(c.UserContext(), userID)
	if err != nil {
		return HandleDomainError(c, h.logger, err)
	}

	result := make([]SessionResponse, len(sessions))
	for i, s := range sessions {
		result[i] = SessionResponse{
			ID:        s.ID,
			UserID:    s.UserID,
			IPAddress: s.IPAddress,
			UserAgent: s.UserAgent,
			ExpiresAt: s.ExpiresAt,
			CreatedAt: s.CreatedAt,
		}
	}
	return response.OK(c, result)
}

func buildAuditFilter(c *fiber.Ctx) (domain.AuditLogFilter, error) {
	filter := domain.AuditLogFilter{
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	}

	if eventType := c.Query("eventType"); eventType != "" {
		et := domain.EventType(eventType)
		filter.EventType = &et
	}

	if userID := c.Query("userId"); userID != "" {
		if _, err := uuid.Parse(userID); err != nil {
			return filter, fmt.Errorf(MsgInvalidUserIDFormat, userID)
		}
		filter.UserID = &userID
	}

	filter.StartDate = parseQueryTime(c, "startDate")
	filter.EndDate = parseQueryTime(c, "endDate")

	return filter, nil
}

func parseQueryTime(c *fiber.Ctx, key string) *time.Time {
	value := c.Query(key)
	if value == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &parsed
}

func toAuditLogResponses(logs []domain.AuditLog) []AuditLogResponse {
	result := make([]AuditLogResponse, len(logs))
	for i, log := range logs {
		result[i] = AuditLogResponse{
			ID:           log.ID,
			EventType:    string(log.EventType),
			ResourceType: string(log.ResourceType),
			ResourceID:   log.ResourceID,
			UserID:       log.UserID,
			UserEmail:    log.UserEmail,
			IPAddress:    log.IPAddress,
			UserAgent:    log.UserAgent,
			CreatedAt:    log.CreatedAt,
		}

		if len(log.Details) > 0 {
			var details interface{}
			if err := json.Unmarshal(log.Details, &details); err == nil {
				result[i].Details = details
			}
		}
	}
	return result
}
