package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Isaac-1-lang/Ecommerce/internal/crypto"
	"github.com/Isaac-1-lang/Ecommerce/internal/domain"
	"github.com/Isaac-1-lang/Ecommerce/internal/events"
	"github.com/Isaac-1-lang/Ecommerce/internal/password"
	"github.com/Isaac-1-lang/Ecommerce/internal/token"
)

const DefaultRefreshThreshold = 2 * time.Minute

type SessionEventPublisher interface {
	Publish(event events.SessionEvent)
}

type LoginInput struct {
	Email    string
	Password string
	Client   ClientInfo
}

type RegisterInput struct {
	Email    string      `validate:"required,email,max=255"`
	Password string      `validate:"required,min=6,max=72"`
	Name     string      `validate:"required,max=255"`
	Role     domain.Role `validate:"omitempty,oneof=customer seller"`
	Client   ClientInfo  `validate:"-"`
}

type LogoutInput struct {
	Token  string
	Client ClientInfo
}

type RefreshInput struct {
	Token  string
	Client ClientInfo
}

type AuthResult struct {
	Token     string
	User      *domain.User
	SessionID string
	ExpiresAt time.Time
	ExpiresIn time.Duration
}

type RefreshResult struct {
	Token     string
	Rotated   bool
	SessionID string
	ExpiresAt time.Time
	ExpiresIn time.Duration
}

// Principal is an authenticated caller: a verified token backed by a live
// session.
type Principal struct {
	User      *domain.User
	Session   *domain.Session
	Claims    *token.Claims
	Remaining time.Duration
}

type SessionServiceConfig struct {
	Users            domain.UserRepository
	Sessions         domain.SessionRepository
	Verifier         *CredentialVerifier
	Issuer           *token.Issuer
	Hasher           *password.Hasher
	Audit            *AuditService
	Events           SessionEventPublisher
	RefreshThreshold time.Duration
	Logger           *slog.Logger
	Now              func() time.Time
}

// SessionService drives the session lifecycle: login and registration
// issue a token and replace any previous session of the user, refresh
// rotates the token only when it is close to expiry, and logout revokes it.
type SessionService struct {
	users     domain.UserRepository
	sessions  domain.SessionRepository
	verifier  *CredentialVerifier
	issuer    *token.Issuer
	hasher    *password.Hasher
	audit     *AuditService
	events    SessionEventPublisher
	threshold time.Duration
	logger    *slog.Logger
	now       func() time.Time
	locks     *keyedMutex
}

func NewSessionService(cfg SessionServiceConfig) *SessionService {
	threshold := cfg.RefreshThreshold
	if threshold <= 0 {
		threshold = DefaultRefreshThreshold
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	verifier := cfg.Verifier
	if verifier == nil {
		verifier = NewCredentialVerifier(cfg.Users, cfg.Hasher)
	}

	return &SessionService{
		users:     cfg.Users,
		sessions:  cfg.Sessions,
		verifier:  verifier,
		issuer:    cfg.Issuer,
		hasher:    cfg.Hasher,
		audit:     cfg.Audit,
		events:    cfg.Events,
		threshold: threshold,
		logger:    logger.With("component", "session"),
		now:       now,
		locks:     newKeyedMutex(),
	}
}

func (s *SessionService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.verifier.Verify(ctx, input.Email, input.Password)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidCredentials) {
			s.audit.LogLoginFailed(ctx, AuditContext{Client: input.Client}, strings.ToLower(strings.TrimSpace(input.Email)))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to verify credentials: %w", err)
	}

	result, replaced, err := s.startSession(ctx, user, input.Client)
	if err != nil {
		return nil, err
	}

	s.audit.LogUserLoggedIn(ctx, auditContextFor(user, input.Client), result.SessionID, replaced)
	s.logger.Info("User logged in", "user_id", user.ID, "session_id", result.SessionID, "replaced", replaced)

	return result, nil
}

func (s *SessionService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = strings.TrimSpace(input.Name)

	if err := validateInput(input); err != nil {
		return nil, err
	}

	_, err := s.users.FindByEmail(ctx, input.Email)
	if err == nil {
		return nil, domain.ErrAlreadyExists
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := input.Role
	if role == "" {
		role = domain.RoleCustomer
	}

	user, err := s.users.Create(ctx, domain.CreateUserInput{
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	result, _, err := s.startSession(ctx, user, input.Client)
	if err != nil {
		s.discardUser(ctx, user)
		return nil, err
	}

	auditCtx := auditContextFor(user, input.Client)
	s.audit.LogUserRegistered(ctx, auditCtx, user.Role)
	s.audit.LogUserLoggedIn(ctx, auditCtx, result.SessionID, false)
	s.logger.Info("User registered", "user_id", user.ID, "role", user.Role)

	return result, nil
}

// Logout revokes the session bound to the token, if any. It never fails:
// an unknown token is already logged out and storage errors are only logged.
func (s *SessionService) Logout(ctx context.Context, input LogoutInput) {
	if input.Token == "" {
		return
	}
	hash := crypto.HashSessionToken(input.Token)

	session, err := s.sessions.FindByTokenHash(ctx, hash)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.Warn("Failed to look up session on logout", "error", err)
	}

	if err := s.sessions.DeleteByTokenHash(ctx, hash); err != nil {
		s.logger.Warn("Failed to delete session on logout", "error", err)
		return
	}

	if session == nil {
		return
	}

	s.publish(events.SessionEvent{
		Type:      events.TypeRevoked,
		UserID:    session.UserID,
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
	})
	userID := session.UserID
	s.audit.LogUserLoggedOut(ctx, AuditContext{UserID: &userID, Client: input.Client}, session.ID)
	s.logger.Info("User logged out", "user_id", session.UserID, "session_id", session.ID)
}

// Refresh returns the same token while more than the refresh threshold is
// left, and otherwise rotates the session to a new token in place. The old
// token stops working as soon as the rotation is stored.
func (s *SessionService) Refresh(ctx context.Context, input RefreshInput) (*RefreshResult, error) {
	if input.Token == "" {
		return nil, domain.ErrUnauthorized
	}
	hash := crypto.HashSessionToken(input.Token)

	session, err := s.findSession(ctx, hash)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(session.UserID)
	defer unlock()

	// A refresh or login that held the lock may have changed the session.
	session, err = s.findSession(ctx, hash)
	if err != nil {
		return nil, err
	}

	now := s.now()
	timeLeft := session.ExpiresAt.Sub(now)
	if timeLeft > s.threshold {
		return &RefreshResult{
			Token:     input.Token,
			Rotated:   false,
			SessionID: session.ID,
			ExpiresAt: session.ExpiresAt,
			ExpiresIn: timeLeft,
		}, nil
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}

	issued, err := s.issuer.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	rotated, err := s.sessions.Rotate(ctx, domain.RotateSessionInput{
		SessionID:    session.ID,
		UserID:       session.UserID,
		OldTokenHash: hash,
		NewTokenHash: crypto.HashSessionToken(issued.Token),
		ExpiresAt:    issued.ExpiresAt,
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to rotate session: %w", err)
	}

	s.publish(events.SessionEvent{
		Type:      events.TypeRefreshed,
		UserID:    rotated.UserID,
		SessionID: rotated.ID,
		ExpiresAt: rotated.ExpiresAt,
	})
	s.audit.LogSessionRefreshed(ctx, auditContextFor(user, input.Client), rotated.ID)
	s.logger.Debug("Session rotated", "user_id", user.ID, "session_id", rotated.ID)

	return &RefreshResult{
		Token:     issued.Token,
		Rotated:   true,
		SessionID: rotated.ID,
		ExpiresAt: rotated.ExpiresAt,
		ExpiresIn: rotated.ExpiresAt.Sub(now),
	}, nil
}

// Authenticate resolves a bearer token to its user. The token must verify
// and still be the current token of a live session.
func (s *SessionService) Authenticate(ctx context.Context, rawToken string) (*Principal, error) {
	if rawToken == "" {
		return nil, domain.ErrUnauthorized
	}

	claims, err := s.issuer.Verify(rawToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSession, err)
	}

	session, err := s.findSession(ctx, crypto.HashSessionToken(rawToken))
	if err != nil {
		return nil, err
	}
	if session.UserID != claims.UserID() {
		return nil, domain.ErrInvalidSession
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}

	return &Principal{
		User:      user,
		Session:   session,
		Claims:    claims,
		Remaining: session.ExpiresAt.Sub(s.now()),
	}, nil
}

func (s *SessionService) ListUserSessions(ctx context.Context, userID string) ([]domain.Session, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.sessions.FindByUserID(ctx, userID)
}

// discardUser removes an account whose first session could not be stored,
// so the same email can register again.
func (s *SessionService) discardUser(ctx context.Context, user *domain.User) {
	if err := s.users.Delete(context.WithoutCancel(ctx), user.ID); err != nil {
		s.logger.Error("Failed to remove user after session error", "user_id", user.ID, "error", err)
	}
}

// startSession evicts every session of the user and stores a new one bound
// to a freshly issued token. It reports whether a live session was evicted.
func (s *SessionService) startSession(ctx context.Context, user *domain.User, client ClientInfo) (*AuthResult, bool, error) {
	unlock := s.locks.Lock(user.ID)
	defer unlock()

	previous, err := s.sessions.FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load sessions: %w", err)
	}

	if err := s.sessions.DeleteByUserID(ctx, user.ID); err != nil {
		return nil, false, fmt.Errorf("failed to clear sessions: %w", err)
	}

	issued, err := s.issuer.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, false, err
	}

	session, err := s.sessions.Replace(ctx, domain.CreateSessionInput{
		UserID:    user.ID,
		TokenHash: crypto.HashSessionToken(issued.Token),
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
		ExpiresAt: issued.ExpiresAt,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to store session: %w", err)
	}

	for _, old := range previous {
		s.publish(events.SessionEvent{
			Type:      events.TypeReplaced,
			UserID:    user.ID,
			SessionID: old.ID,
			ExpiresAt: old.ExpiresAt,
		})
	}

	return &AuthResult{
		Token:     issued.Token,
		User:      user,
		SessionID: session.ID,
		ExpiresAt: issued.ExpiresAt,
		ExpiresIn: issued.ExpiresAt.Sub(issued.IssuedAt),
	}, len(previous) > 0, nil
}

func (s *SessionService) findSession(ctx context.Context, tokenHash string) (*domain.Session, error) {
	session, err := s.sessions.FindByTokenHash(ctx, tokenHash)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if !session.Live(s.now()) {
		return nil, domain.ErrInvalidSession
	}
	return session, nil
}

func (s *SessionService) publish(event events.SessionEvent) {
	if s.events != nil {
		s.events.Publish(event)
	}
}
