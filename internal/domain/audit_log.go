package domain

import (
	"context"
	"encoding/json"
	"time"
)

type EventType string

const (
	EventUserRegistered   EventType = "user.registered"
	EventUserLoggedIn     EventType = "user.logged_in"
	EventUserLoginFailed  EventType = "user.login_failed"
	EventUserLoggedOut    EventType = "user.logged_out"
	EventSessionRefreshed EventType = "session.refreshed"
	EventProfileUpdated   EventType = "user.profile_updated"
)

type ResourceType string

const (
	ResourceUser    ResourceType = "user"
	ResourceSession ResourceType = "session"
)

type AuditLog struct {
	ID           string          `json:"id"`
	EventType    EventType       `json:"eventType"`
	ResourceType ResourceType    `json:"resourceType"`
	ResourceID   *string         `json:"resourceId,omitempty"`
	UserID       *string         `json:"userId,omitempty"`
	UserEmail    *string         `json:"userEmail,omitempty"`
	Details      json.RawMessage `json:"details,omitempty"`
	IPAddress    *string         `json:"ipAddress,omitempty"`
	UserAgent    *string         `json:"userAgent,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type CreateAuditLogInput struct {
	EventType    EventType
	ResourceType ResourceType
	ResourceID   *string
	UserID       *string
	UserEmail    *string
	Details      map[string]interface{}
	IPAddress    *string
	UserAgent    *string
}

type AuditLogFilter struct {
	EventType *EventType
	UserID    *string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

const (
	DefaultAuditLogLimit = 50
	MaxAuditLogLimit     = 500
)

// Page returns the limit and offset a query actually applies: a missing
// limit becomes the default, a large one is capped, a negative offset is 0.
func (f AuditLogFilter) Page() (limit, offset int) {
	limit, offset = f.Limit, f.Offset
	if limit <= 0 {
		limit = DefaultAuditLogLimit
	}
	if limit > MaxAuditLogLimit {
		limit = MaxAuditLogLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

type AuditLogRepository interface {
	Create(ctx context.Context, input CreateAuditLogInput) (*AuditLog, error)
	FindAll(ctx context.Context, filter AuditLogFilter) ([]AuditLog, int, error)
}
