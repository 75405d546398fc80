package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Isaac-1-lang/Ecommerce/internal/domain"
	"github.com/Isaac-1-lang/Ecommerce/internal/events"
	"github.com/Isaac-1-lang/Ecommerce/internal/handler"
	"github.com/Isaac-1-lang/Ecommerce/internal/middleware"
	"github.com/Isaac-1-lang/Ecommerce/internal/password"
	"github.com/Isaac-1-lang/Ecommerce/internal/repository"
	"github.com/Isaac-1-lang/Ecommerce/internal/service"
	"github.com/Isaac-1-lang/Ecommerce/internal/token"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	app      *fiber.App
	clock    *testClock
	users    *repository.MemoryUserRepository
	sessions *repository.MemorySessionRepository
	hasher   *password.Hasher
	hub      *events.Hub
	baseURL  string
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string   `json:"code"`
		Message string   `json:"message"`
		Details []string `json:"details"`
	} `json:"error"`
	Meta struct {
		TraceID    string `json:"traceId"`
		Pagination *struct {
			Limit  int `json:"limit"`
			Offset int `json:"offset"`
			Total  int `json:"total"`
		} `json:"pagination"`
	} `json:"meta"`
}

type authData struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	ExpiresIn int64     `json:"expiresIn"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type refreshData struct {
	Token   string `json:"token"`
	Rotated bool   `json:"rotated"`
	Message string `json:"message"`
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	clock := &testClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	users := repository.NewMemoryUserRepository()
	sessions := repository.NewMemorySessionRepositoryWithClock(clock.Now)
	hasher := password.NewHasher(4)

	issuer, err := token.NewIssuer(token.Config{
		Secret: strings.Repeat("k", token.MinSecretLength),
		TTL:    10 * time.Minute,
		Issuer: "storefront-test",
		Now:    clock.Now,
	})
	require.NoError(t, err)

	audit := service.NewAuditService(repository.NewMemoryAuditLogRepository(), logger)
	hub := events.NewHub()
	svc := service.NewSessionService(service.SessionServiceConfig{
		Users:            users,
		Sessions:         sessions,
		Verifier:         service.NewCredentialVerifier(users, hasher),
		Issuer:           issuer,
		Hasher:           hasher,
		Audit:            audit,
		Events:           hub,
		RefreshThreshold: 2 * time.Minute,
		Logger:           logger,
		Now:              clock.Now,
	})

	auth := middleware.NewAuthMiddleware(middleware.AuthMiddlewareConfig{Authenticator: svc, Logger: logger})
	noLimit := func(c *fiber.Ctx) error { return c.Next() }

	app := fiber.New()
	app.Use(middleware.TraceID())
	api := app.Group(handler.APIPrefix)
	handler.NewAuthHandler(handler.AuthHandlerConfig{Sessions: svc, Logger: logger}).Register(api, noLimit, auth.Require())
	handler.NewProfileHandler(service.NewProfileService(users, audit), logger).Register(api, auth.Require())
	handler.NewAdminHandler(handler.AdminHandlerConfig{Audit: audit, Sessions: svc, Logger: logger}).
		Register(api, auth.Require(), middleware.RequireRole(domain.RoleAdmin))
	handler.NewSessionEventsHandler(handler.SessionEventsHandlerConfig{
		Sessions:     svc,
		Hub:          hub,
		TickInterval: time.Hour,
		Now:          clock.Now,
		Logger:       logger,
	}).Register(api)
	handler.NewHealthHandler("test", nil).Register(app)

	return &harness{app: app, clock: clock, users: users, sessions: sessions, hasher: hasher, hub: hub}
}

func (h *harness) seedUser(t *testing.T, email, plain string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := h.hasher.Hash(plain)
	require.NoError(t, err)
	user, err := h.users.Create(context.Background(), domain.CreateUserInput{
		Email:        email,
		Name:         "Test User",
		PasswordHash: hash,
		Role:         role,
	})
	require.NoError(t, err)
	return user
}

func (h *harness) do(t *testing.T, method, path, bearer string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := h.send(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

// send routes through the listener once one is started, so the app is never
// driven by app.Test and a live server at the same time.
func (h *harness) send(req *http.Request) (*http.Response, error) {
	if h.baseURL == "" {
		return h.app.Test(req, -1)
	}
	out, err := http.NewRequest(req.Method, h.baseURL+req.URL.RequestURI(), req.Body)
	if err != nil {
		return nil, err
	}
	out.Header = req.Header
	return http.DefaultClient.Do(out)
}

func (h *harness) login(t *testing.T, email, plain string) authData {
	t.Helper()
	status, env := h.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": plain})
	require.Equal(t, http.StatusOK, status)
	var data authData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data
}

func TestLoginReturnsTokenAndExpiry(t *testing.T) {
	h := newHarness(t)
	h.seedUser(t, "a@x.com", "correct", domain.RoleCustomer)

	data := h.login(t, "a@x.com", "correct")

	assert.NotEmpty(t, data.Token)
	assert.Equal(t, "customer", data.Role)
	assert.Equal(t, int64(600000), data.ExpiresIn)
	assert.True(t, data.ExpiresAt.Equal(h.clock.Now().Add(10*time.Minute)))
}

func TestLoginInvalidCredentials(t *testing.T) {
	h := newHarness(t)
	h.seedUser(t, "a@x.com", "correct", domain.RoleCustomer)

	tests := []struct {
		name  string
		email string
		pass  string
	}{
		{"unknown email", "bad@x.com", "wrong"},
		{"wrong password", "a@x.com", "wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := h.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": tt.email, "password": tt.pass})
			assert.Equal(t, http.StatusUnauthorized, status)
			require.NotNil(t, env.Error)
			assert.Equal(t, "Invalid Email or password", env.Error.Message)
			assert.NotEmpty(t, env.Meta.TraceID)
		})
	}
}

func TestLoginRejectsMalformedBody(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegister(t *testing.T) {
	h := newHarness(t)

	body := map[string]string{"email": "new@x.com", "password": "secret1", "name": "New"}
	status, env := h.do(t, http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusCreated, status)

	var data authData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotEmpty(t, data.Token)
	assert.Equal(t, "customer", data.Role)

	status, env = h.do(t, http.MethodPost, "/api/auth/register", "", body)
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Email already registered", env.Error.Message)
}

func TestRegisterValidation(t *testing.T) {
	h := newHarness(t)

	status, env := h.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "not-an-email",
		"password": "123",
		"name":     "X",
		"role":     "admin",
	})

	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Equal(t, "Validation error", env.Error.Message)
	assert.Contains(t, env.Error.Details, "email must be a valid email address")
	assert.Contains(t, env.Error.Details, "password must be at least 6 characters")
	assert.Contains(t, env.Error.Details, "role must be one of: customer, seller")
}

func TestRefreshKeepsFreshToken(t *testing.T) {
	h := newHarness(t)
	h.seedUser(t, "a@x.com", "correct", domain.RoleCustomer)
	t1 := h.login(t, "a@x.com", "correct").Token

	status, env := h.do(t, http.MethodPost, "/api/auth/refresh", t1, nil)
	require.Equal(t, http.StatusOK, status)

	var data refreshData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, t1, data.Token)
	assert.False(t, data.Rotated)
	assert.Equal(t, handler.MsgSessionValid, data.Message)
}

func TestRefreshRotatesNearExpiry(t *testing.T) {
	h := newHarness(t)
	h.seedUser(t, "a@x.com", "correct", domain.RoleCustomer)
	t1 := h.login(t, "a@x.com", "correct").Token

	h.clock.Advance(9 * time.Minute)

	status, env := h.do(t, http.MethodPost, "/api/auth/refresh", t1, nil)
	require.Equal(t, http.StatusOK, status)

	var data refreshData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.True(t, data.Rotated)
	assert.NotEqual(t, t1, data.Token)

	status, env = h.do(t, http.MethodPost, "/api/auth/refresh", t1, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid session", env.Error.Message)

	status, _ = h.do(t, http.MethodGet, "/api/auth/me", data.Token, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestRefreshWithoutToken(t *testing.T) {
	h := newHarness(t)

	status, env := h.do(t, http.MethodPost, "/api/auth/refresh", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "No token provided", env.Error.Message)
}

func TestLogoutAlwaysSucceeds(t *testing.T) {
	h := newHarness(t)
	h.seedUser(t, "a@x.com", "correct", domain.RoleCustomer)
	t1 := h.login(t, "a@x.com", "correct").Token

	for _, bearer := range []string{t1, t1, "garbage", ""} {
		status, env := h.do(t, http.MethodPost, "/api/auth/logout", bearer, nil)
		assert.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `{"message":"Logged out successfully"}`, string(env.Data))
	}

	status, env := h.do(t, http.MethodPost, "/api/auth/refresh", t1, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid session", env.Error.Message)
	assert.Equal(t, 0, h.sessions.Count())
}

func TestSecondLoginInvalidatesFirst(t *testing.T) {
	h := newHarness(t)
	h.seedUser(t, "a@x.com", "correct", domain.RoleCustomer)

	t1 := h.login(t, "a@x.com", "correct").Token
	t2 := h.login(t, "a@x.com", "correct").Token
	require.NotEqual(t, t1, t2)

	status, _ := h.do(t, http.MethodGet, "/api/auth/me", t1, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env := h.do(t, http.MethodGet, "/api/auth/me", t2, nil)
	assert.Equal(t, http.StatusOK, status)

	var me struct {
		RemainingSeconds int64 `json:"remainingSeconds"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, int64(600), me.RemainingSeconds)
	assert.Equal(t, 1, h.sessions.Count())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h := newHarness(t)

	status, env := h.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "No token provided", env.Error.Message)

	status, env = h.do(t, http.MethodGet, "/api/users/profile", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid session", env.Error.Message)
}

func TestExpiredSessionIsRejected(t *testing.T) {
	h := newHarness(t)
	h.seedUser(t, "a@x.com", "correct", domain.RoleCustomer)
	t1 := h.login(t, "a@x.com", "correct").Token

	h.clock.Advance(10*time.Minute + time.Second)

	status, _ := h.do(t, http.MethodGet, "/api/auth/me", t1, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = h.do(t, http.MethodPost, "/api/auth/refresh", t1, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestProfileUpdate(t *testing.T) {
	h := newHarness(t)
	h.seedUser(t, "a@x.com", "correct", domain.RoleCustomer)
	t1 := h.login(t, "a@x.com", "correct").Token

	status, env := h.do(t, http.MethodPut, "/api/users/profile", t1, map[string]string{"address": "12 Market Street"})
	require.Equal(t, http.StatusOK, status)

	var user struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Address string `json:"address"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, "Test User", user.Name)
	assert.Equal(t, "12 Market Street", user.Address)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	h := newHarness(t)
	customer := h.seedUser(t, "a@x.com", "correct", domain.RoleCustomer)
	h.seedUser(t, "root@x.com", "correct", domain.RoleAdmin)

	customerToken := h.login(t, "a@x.com", "correct").Token
	status, env := h.do(t, http.MethodGet, "/api/admin/audit-logs", customerToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Admin access required", env.Error.Message)

	adminToken := h.login(t, "root@x.com", "correct").Token

	status, env = h.do(t, http.MethodGet, "/api/admin/audit-logs?eventType=user.logged_in", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	var logs []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &logs))
	assert.Len(t, logs, 2)

	status, env = h.do(t, http.MethodGet, "/api/admin/users/"+customer.ID+"/sessions", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	var sessions []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &sessions))
	assert.Len(t, sessions, 1)

	status, _ = h.do(t, http.MethodGet, "/api/admin/users/missing/sessions", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAdminAuditLogsReportAppliedPage(t *testing.T) {
	h := newHarness(t)
	h.seedUser(t, "root@x.com", "correct", domain.RoleAdmin)
	adminToken := h.login(t, "root@x.com", "correct").Token

	tests := []struct {
		name   string
		query  string
		limit  int
		offset int
	}{
		{"defaults", "", domain.DefaultAuditLogLimit, 0},
		{"zero limit", "?limit=0", domain.DefaultAuditLogLimit, 0},
		{"capped limit", "?limit=10000", domain.MaxAuditLogLimit, 0},
		{"negative offset", "?limit=5&offset=-3", 5, 0},
		{"explicit page", "?limit=5&offset=1", 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := h.do(t, http.MethodGet, "/api/admin/audit-logs"+tt.query, adminToken, nil)
			require.Equal(t, http.StatusOK, status)
			require.NotNil(t, env.Meta.Pagination)
			assert.Equal(t, tt.limit, env.Meta.Pagination.Limit)
			assert.Equal(t, tt.offset, env.Meta.Pagination.Offset)
			assert.Equal(t, 1, env.Meta.Pagination.Total)
		})
	}
}

func TestAdminRoutesRejectMalformedUserID(t *testing.T) {
	h := newHarness(t)
	h.seedUser(t, "root@x.com", "correct", domain.RoleAdmin)
	adminToken := h.login(t, "root@x.com", "correct").Token

	status, env := h.do(t, http.MethodGet, "/api/admin/users/not-a-uuid/sessions", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, handler.MsgResourceNotFound, env.Error.Message)

	status, env = h.do(t, http.MethodGet, "/api/admin/audit-logs?userId=not-a-uuid", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_PAYLOAD", env.Error.Code)
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	status, env := h.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
}
