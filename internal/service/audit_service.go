package service

import (
	"context"
	"log/slog"

	"github.com/Isaac-1-lang/Ecommerce/internal/domain"
)

type AuditService struct {
	repo   domain.AuditLogRepository
	logger *slog.Logger
}

func NewAuditService(repo domain.AuditLogRepository, logger *slog.Logger) *AuditService {
	return &AuditService{
		repo:   repo,
		logger: logger.With("component", "audit"),
	}
}

// ClientInfo describes the caller of an auth operation. It is recorded on
// sessions and in the audit trail.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

type AuditContext struct {
	UserID    *string
	UserEmail *string
	Client    ClientInfo
}

func auditContextFor(user *domain.User, client ClientInfo) AuditContext {
	ctx := AuditContext{Client: client}
	if user != nil {
		id, email := user.ID, user.Email
		ctx.UserID = &id
		ctx.UserEmail = &email
	}
	return ctx
}

// Log records an event. Storage failures are logged and swallowed so that
// auditing never fails the operation being audited.
func (s *AuditService) Log(ctx context.Context, auditCtx AuditContext, eventType domain.EventType, resourceType domain.ResourceType, resourceID *string, details map[string]interface{}) {
	if s == nil {
		return
	}

	input := domain.CreateAuditLogInput{
		EventType:    eventType,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		UserID:       auditCtx.UserID,
		UserEmail:    auditCtx.UserEmail,
		Details:      details,
		IPAddress:    optional(auditCtx.Client.IPAddress),
		UserAgent:    optional(auditCtx.Client.UserAgent),
	}

	if _, err := s.repo.Create(ctx, input); err != nil {
		s.logger.Error("failed to create audit log",
			"event_type", eventType,
			"resource_type", resourceType,
			"error", err,
		)
	}
}

func (s *AuditService) LogUserRegistered(ctx context.Context, auditCtx AuditContext, role domain.Role) {
	s.Log(ctx, auditCtx, domain.EventUserRegistered, domain.ResourceUser, auditCtx.UserID, map[string]interface{}{
		"role": role,
	})
}

func (s *AuditService) LogUserLoggedIn(ctx context.Context, auditCtx AuditContext, sessionID string, replaced bool) {
	s.Log(ctx, auditCtx, domain.EventUserLoggedIn, domain.ResourceSession, &sessionID, map[string]interface{}{
		"replaced_previous": replaced,
	})
}

func (s *AuditService) LogLoginFailed(ctx context.Context, auditCtx AuditContext, email string) {
	s.Log(ctx, auditCtx, domain.EventUserLoginFailed, domain.ResourceUser, nil, map[string]interface{}{
		"email": email,
	})
}

func (s *AuditService) LogUserLoggedOut(ctx context.Context, auditCtx AuditContext, sessionID string) {
	s.Log(ctx, auditCtx, domain.EventUserLoggedOut, domain.ResourceSession, &sessionID, nil)
}

func (s *AuditService) LogSessionRefreshed(ctx context.Context, auditCtx AuditContext, sessionID string) {
	s.Log(ctx, auditCtx, domain.EventSessionRefreshed, domain.ResourceSession, &sessionID, nil)
}

func (s *AuditService) LogProfileUpdated(ctx context.Context, auditCtx AuditContext, fields []string) {
	s.Log(ctx, auditCtx, domain.EventProfileUpdated, domain.ResourceUser, auditCtx.UserID, map[string]interface{}{
		"fields": fields,
	})
}

func (s *AuditService) Query(ctx context.Context, filter domain.AuditLogFilter) ([]domain.AuditLog, int, error) {
	return s.repo.FindAll(ctx, filter)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
