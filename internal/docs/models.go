package docs

import "time"

// LoginRequest
// @Description Credentials for an existing account
type LoginRequest struct {
	Email    string `json:"email" example:"jane@example.com"`
	Password string `json:"password" example:"secret123"`
}

// RegisterRequest
// @Description New account. Role defaults to customer.
type RegisterRequest struct {
	Email    string `json:"email" example:"jane@example.com"`
	Password string `json:"password" example:"secret123" minLength:"6" maxLength:"72"`
	Name     string `json:"name" example:"Jane Doe"`
	Role     string `json:"role,omitempty" example:"customer" enums:"customer,seller"`
}

// User
// @Description Public view of an account
type User struct {
	ID        string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Email     string    `json:"email" example:"jane@example.com"`
	Name      string    `json:"name" example:"Jane Doe"`
	Role      string    `json:"role" example:"customer" enums:"customer,seller,admin"`
	Address   string    `json:"address,omitempty" example:"12 Market Street"`
	Phone     string    `json:"phone,omitempty" example:"+250700000000"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthResponse
// @Description Token and user returned by login and register. expiresIn is in milliseconds.
type AuthResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role" example:"customer"`
	ExpiresIn int64     `json:"expiresIn" example:"900000"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

// RefreshResponse
// @Description Result of a refresh. rotated is false when the presented token is still returned.
type RefreshResponse struct {
	Token     string    `json:"token"`
	Rotated   bool      `json:"rotated" example:"false"`
	Message   string    `json:"message" example:"Session still valid"`
	ExpiresIn int64     `json:"expiresIn" example:"540000"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type MessageResponse struct {
	Message string `json:"message" example:"Logged out successfully"`
}

// MeResponse
// @Description Authenticated user and remaining lifetime of the current session
type MeResponse struct {
	User             User      `json:"user"`
	SessionID        string    `json:"sessionId"`
	ExpiresAt        time.Time `json:"expiresAt"`
	RemainingSeconds int64     `json:"remainingSeconds" example:"600"`
}

type UpdateProfileRequest struct {
	Name    *string `json:"name,omitempty" example:"Jane D."`
	Address *string `json:"address,omitempty" example:"12 Market Street"`
	Phone   *string `json:"phone,omitempty" example:"+250700000000"`
}

// AuditLog
// @Description Recorded account or session event
type AuditLog struct {
	ID           string                 `json:"id"`
	EventType    string                 `json:"eventType" example:"user.logged_in"`
	ResourceType string                 `json:"resourceType" example:"session"`
	ResourceID   string                 `json:"resourceId,omitempty"`
	UserID       string                 `json:"userId,omitempty"`
	UserEmail    string                 `json:"userEmail,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
	IPAddress    string                 `json:"ipAddress,omitempty"`
	UserAgent    string                 `json:"userAgent,omitempty"`
	CreatedAt    time.Time              `json:"createdAt"`
}

type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	IPAddress string    `json:"ipAddress,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionEvent
// @Description Pushed over the session event stream
type SessionEvent struct {
	Type             string    `json:"type" example:"tick" enums:"tick,refreshed,replaced,revoked,expired"`
	UserID           string    `json:"userId"`
	SessionID        string    `json:"sessionId"`
	ExpiresAt        time.Time `json:"expiresAt"`
	RemainingSeconds int64     `json:"remainingSeconds" example:"600"`
	Timestamp        time.Time `json:"timestamp"`
}

type Health struct {
	Status       string            `json:"status" example:"healthy" enums:"healthy,degraded"`
	Timestamp    time.Time         `json:"timestamp"`
	Version      string            `json:"version" example:"0.1.0"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// ErrorInfo
// @Description Error detail carried in the response envelope
type ErrorInfo struct {
	Code    string      `json:"code" example:"INVALID_SESSION"`
	Message string      `json:"message" example:"Invalid session"`
	Details interface{} `json:"details,omitempty"`
}

type Meta struct {
	TraceID string `json:"traceId,omitempty" example:"abc123"`
}
