package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Isaac-1-lang/Ecommerce/internal/domain"
	"github.com/Isaac-1-lang/Ecommerce/internal/events"
	"github.com/Isaac-1-lang/Ecommerce/internal/password"
	"github.com/Isaac-1-lang/Ecommerce/internal/repository"
	"github.com/Isaac-1-lang/Ecommerce/internal/token"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testEmail    = "shopper@example.com"
	testPassword = "correct-horse"
	testTTL      = 10 * time.Minute
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	clock    *fakeClock
	users    *repository.MemoryUserRepository
	sessions *repository.MemorySessionRepository
	audit    *repository.MemoryAuditLogRepository
	hub      *events.Hub
	svc      *SessionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	issuer, err := token.NewIssuer(token.Config{
		Secret: testSecret,
		TTL:    testTTL,
		Issuer: "storefront-test",
		Now:    clock.Now,
	})
	require.NoError(t, err)

	f := &fixture{
		clock:    clock,
		users:    repository.NewMemoryUserRepository(),
		sessions: repository.NewMemorySessionRepositoryWithClock(clock.Now),
		audit:    repository.NewMemoryAuditLogRepository(),
		hub:      events.NewHub(),
	}
	f.svc = NewSessionService(SessionServiceConfig{
		Users:            f.users,
		Sessions:         f.sessions,
		Issuer:           issuer,
		Hasher:           password.NewHasher(4),
		Audit:            NewAuditService(f.audit, logger),
		Events:           f.hub,
		RefreshThreshold: 2 * time.Minute,
		Logger:           logger,
		Now:              clock.Now,
	})
	return f
}

func (f *fixture) register(t *testing.T) *AuthResult {
	t.Helper()
	result, err := f.svc.Register(context.Background(), RegisterInput{
		Email:    testEmail,
		Password: testPassword,
		Name:     "Shopper",
	})
	require.NoError(t, err)
	return result
}

func (f *fixture) login(t *testing.T) *AuthResult {
	t.Helper()
	result, err := f.svc.Login(context.Background(), LoginInput{Email: testEmail, Password: testPassword})
	require.NoError(t, err)
	return result
}

func TestRegister_CreatesUserAndSession(t *testing.T) {
	f := newFixture(t)

	result := f.register(t)

	assert.NotEmpty(t, result.Token)
	assert.Equal(t, domain.RoleCustomer, result.User.Role)
	assert.Equal(t, testTTL, result.ExpiresIn)
	assert.Equal(t, f.clock.Now().Add(testTTL), result.ExpiresAt)
	assert.Equal(t, 1, f.sessions.Count())

	principal, err := f.svc.Authenticate(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, testEmail, principal.User.Email)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t)

	_, err := f.svc.Register(context.Background(), RegisterInput{
		Email:    "  SHOPPER@example.com ",
		Password: "another-pass",
		Name:     "Other",
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

type unavailableSessions struct {
	*repository.MemorySessionRepository
}

func (unavailableSessions) Replace(context.Context, domain.CreateSessionInput) (*domain.Session, error) {
	return nil, errors.New("session store unavailable")
}

func TestRegister_SessionFailureRemovesAccount(t *testing.T) {
	f := newFixture(t)
	f.svc.sessions = unavailableSessions{f.sessions}

	_, err := f.svc.Register(context.Background(), RegisterInput{
		Email:    testEmail,
		Password: testPassword,
		Name:     "Shopper",
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrAlreadyExists)

	_, err = f.users.FindByEmail(context.Background(), testEmail)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	f.svc.sessions = f.sessions
	result := f.register(t)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, 1, f.sessions.Count())
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name   string
		input  RegisterInput
		detail string
	}{
		{
			name:   "missing email",
			input:  RegisterInput{Password: testPassword, Name: "A"},
			detail: "email is required",
		},
		{
			name:   "bad email",
			input:  RegisterInput{Email: "not-an-email", Password: testPassword, Name: "A"},
			detail: "email must be a valid email address",
		},
		{
			name:   "short password",
			input:  RegisterInput{Email: testEmail, Password: "123", Name: "A"},
			detail: "password must be at least 6 characters",
		},
		{
			name:   "admin self-registration",
			input:  RegisterInput{Email: testEmail, Password: testPassword, Name: "A", Role: domain.RoleAdmin},
			detail: "role must be one of: customer, seller",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.svc.Register(context.Background(), tt.input)

			require.ErrorIs(t, err, domain.ErrInvalidInput)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Details, tt.detail)
			assert.Zero(t, f.sessions.Count())
		})
	}
}

func TestRegister_SellerRoleAllowed(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Register(context.Background(), RegisterInput{
		Email:    "seller@example.com",
		Password: testPassword,
		Name:     "Seller",
		Role:     domain.RoleSeller,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSeller, result.User.Role)
}

func TestLogin_InvalidCredentialsAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	f.register(t)
	ctx := context.Background()

	_, wrongPassword := f.svc.Login(ctx, LoginInput{Email: testEmail, Password: "wrong-password"})
	_, unknownEmail := f.svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: testPassword})

	assert.ErrorIs(t, wrongPassword, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, domain.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())

	failed := domain.EventUserLoginFailed
	logs, total, err := f.audit.FindAll(ctx, domain.AuditLogFilter{EventType: &failed})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, logs, 2)
}

func TestLogin_EmailIsCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	f.register(t)

	_, err := f.svc.Login(context.Background(), LoginInput{Email: "Shopper@Example.COM", Password: testPassword})
	assert.NoError(t, err)
}

func TestLogin_SequenceLeavesSingleSession(t *testing.T) {
	f := newFixture(t)
	f.register(t)
	ctx := context.Background()

	var results []*AuthResult
	for i := 0; i < 4; i++ {
		results = append(results, f.login(t))
		f.clock.Advance(time.Second)
	}

	sessions, err := f.svc.ListUserSessions(ctx, results[0].User.ID)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
	assert.Equal(t, 1, f.sessions.Count())

	for _, stale := range results[:len(results)-1] {
		_, err := f.svc.Authenticate(ctx, stale.Token)
		assert.ErrorIs(t, err, domain.ErrInvalidSession)
	}
	_, err = f.svc.Authenticate(ctx, results[len(results)-1].Token)
	assert.NoError(t, err)
}

func TestLogin_BackToBackOnlySecondTokenValid(t *testing.T) {
	f := newFixture(t)
	f.register(t)
	ctx := context.Background()

	first := f.login(t)
	second := f.login(t)
	require.NotEqual(t, first.Token, second.Token)

	_, err := f.svc.Refresh(ctx, RefreshInput{Token: first.Token})
	assert.ErrorIs(t, err, domain.ErrInvalidSession)

	result, err := f.svc.Refresh(ctx, RefreshInput{Token: second.Token})
	require.NoError(t, err)
	assert.Equal(t, second.Token, result.Token)
}

func TestLogin_ConcurrentLoginsLeaveOneSession(t *testing.T) {
	f := newFixture(t)
	f.register(t)
	ctx := context.Background()

	const workers = 16
	tokens := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := f.svc.Login(ctx, LoginInput{Email: testEmail, Password: testPassword})
			if err == nil {
				tokens[i] = result.Token
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, f.sessions.Count())

	valid := 0
	for _, tok := range tokens {
		require.NotEmpty(t, tok)
		if _, err := f.svc.Authenticate(ctx, tok); err == nil {
			valid++
		}
	}
	assert.Equal(t, 1, valid)
	assert.Zero(t, f.svc.locks.size())
}

func TestRefresh_FreshSessionReturnsSameToken(t *testing.T) {
	f := newFixture(t)
	auth := f.register(t)

	f.clock.Advance(time.Minute)
	result, err := f.svc.Refresh(context.Background(), RefreshInput{Token: auth.Token})
	require.NoError(t, err)

	assert.False(t, result.Rotated)
	assert.Equal(t, auth.Token, result.Token)
	assert.Equal(t, auth.ExpiresAt, result.ExpiresAt)
	assert.Equal(t, 9*time.Minute, result.ExpiresIn)
}

func TestRefresh_NearExpiryRotates(t *testing.T) {
	f := newFixture(t)
	auth := f.register(t)
	ctx := context.Background()

	f.clock.Advance(testTTL - 90*time.Second)
	result, err := f.svc.Refresh(ctx, RefreshInput{Token: auth.Token})
	require.NoError(t, err)

	assert.True(t, result.Rotated)
	assert.NotEqual(t, auth.Token, result.Token)
	assert.Equal(t, auth.SessionID, result.SessionID)
	assert.Equal(t, f.clock.Now().Add(testTTL), result.ExpiresAt)
	assert.Equal(t, testTTL, result.ExpiresIn)

	_, err = f.svc.Refresh(ctx, RefreshInput{Token: auth.Token})
	assert.ErrorIs(t, err, domain.ErrInvalidSession)

	_, err = f.svc.Authenticate(ctx, result.Token)
	assert.NoError(t, err)
}

func TestRefresh_ExactlyAtThresholdRotates(t *testing.T) {
	f := newFixture(t)
	auth := f.register(t)

	f.clock.Advance(testTTL - 2*time.Minute)
	result, err := f.svc.Refresh(context.Background(), RefreshInput{Token: auth.Token})
	require.NoError(t, err)
	assert.True(t, result.Rotated)
}

func TestRefresh_MissingToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Refresh(context.Background(), RefreshInput{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRefresh_AfterLogoutFails(t *testing.T) {
	f := newFixture(t)
	auth := f.register(t)
	ctx := context.Background()

	f.svc.Logout(ctx, LogoutInput{Token: auth.Token})

	_, err := f.svc.Refresh(ctx, RefreshInput{Token: auth.Token})
	assert.ErrorIs(t, err, domain.ErrInvalidSession)
	assert.Zero(t, f.sessions.Count())
}

func TestRefresh_ExpiredSessionIsAbsentWithoutDelete(t *testing.T) {
	f := newFixture(t)
	auth := f.register(t)
	ctx := context.Background()

	f.clock.Advance(testTTL)

	_, err := f.svc.Refresh(ctx, RefreshInput{Token: auth.Token})
	assert.ErrorIs(t, err, domain.ErrInvalidSession)
	assert.Equal(t, 1, f.sessions.Count())

	_, err = f.svc.Authenticate(ctx, auth.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidSession)
}

func TestLogout_UnknownTokenIsNoop(t *testing.T) {
	f := newFixture(t)
	auth := f.register(t)

	f.svc.Logout(context.Background(), LogoutInput{Token: "not-a-session"})
	f.svc.Logout(context.Background(), LogoutInput{})

	_, err := f.svc.Authenticate(context.Background(), auth.Token)
	assert.NoError(t, err)
}

func TestAuthenticate_RejectsForgedToken(t *testing.T) {
	f := newFixture(t)
	f.register(t)

	other, err := token.NewIssuer(token.Config{Secret: "ffffffffffffffffffffffffffffffff", TTL: testTTL, Issuer: "storefront-test"})
	require.NoError(t, err)
	forged, err := other.Issue("someone", testEmail, domain.RoleAdmin)
	require.NoError(t, err)

	_, err = f.svc.Authenticate(context.Background(), forged.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidSession)

	_, err = f.svc.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestSessionEvents_PublishedOnLifecycle(t *testing.T) {
	f := newFixture(t)
	first := f.register(t)
	ctx := context.Background()

	_, stream := f.hub.Subscribe(first.User.ID)

	second := f.login(t)
	replaced := <-stream
	assert.Equal(t, events.TypeReplaced, replaced.Type)
	assert.Equal(t, first.SessionID, replaced.SessionID)

	f.clock.Advance(testTTL - time.Minute)
	refreshed, err := f.svc.Refresh(ctx, RefreshInput{Token: second.Token})
	require.NoError(t, err)
	ev := <-stream
	assert.Equal(t, events.TypeRefreshed, ev.Type)
	assert.Equal(t, second.SessionID, ev.SessionID)
	assert.Equal(t, refreshed.ExpiresAt, ev.ExpiresAt)

	f.svc.Logout(ctx, LogoutInput{Token: refreshed.Token})
	ev = <-stream
	assert.Equal(t, events.TypeRevoked, ev.Type)
	assert.Equal(t, second.SessionID, ev.SessionID)
}

func TestAudit_RecordsLifecycle(t *testing.T) {
	f := newFixture(t)
	auth := f.register(t)
	ctx := context.Background()

	f.clock.Advance(testTTL - time.Minute)
	refreshed, err := f.svc.Refresh(ctx, RefreshInput{Token: auth.Token})
	require.NoError(t, err)
	f.svc.Logout(ctx, LogoutInput{Token: refreshed.Token})

	userID := auth.User.ID
	logs, _, err := f.audit.FindAll(ctx, domain.AuditLogFilter{UserID: &userID})
	require.NoError(t, err)

	seen := make(map[domain.EventType]bool)
	for _, log := range logs {
		seen[log.EventType] = true
	}
	assert.True(t, seen[domain.EventUserRegistered])
	assert.True(t, seen[domain.EventUserLoggedIn])
	assert.True(t, seen[domain.EventSessionRefreshed])
	assert.True(t, seen[domain.EventUserLoggedOut])
}
