package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Isaac-1-lang/Ecommerce/internal/domain"
)

// MemoryUserRepository keeps users in process memory. It backs
// STORAGE_DRIVER=memory and the service tests.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*domain.User
	byEmail map[string]string
	now     func() time.Time
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *r.byID[id]
	return &copied, nil
}

func (r *MemoryUserRepository) Create(_ context.Context, input domain.CreateUserInput) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := normalizeEmail(input.Email)
	if _, exists := r.byEmail[email]; exists {
		return nil, domain.ErrAlreadyExists
	}

	role := input.Role
	if role == "" {
		role = domain.RoleCustomer
	}

	now := r.now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: input.PasswordHash,
		Name:         input.Name,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.byID[user.ID] = user
	r.byEmail[email] = user.ID

	copied := *user
	return &copied, nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.byID[id]; ok {
		delete(r.byEmail, user.Email)
		delete(r.byID, id)
	}
	return nil
}

func (r *MemoryUserRepository) UpdateProfile(_ context.Context, id string, input domain.UpdateProfileInput) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Address != nil {
		user.Address = *input.Address
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	user.UpdatedAt = r.now()

	copied := *user
	return &copied, nil
}

// MemorySessionRepository holds at most one session per user. All methods
// take a single lock, so Replace for one user is linearizable.
type MemorySessionRepository struct {
	mu     sync.Mutex
	byUser map[string]*domain.Session
	byHash map[string]string
	now    func() time.Time
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return NewMemorySessionRepositoryWithClock(time.Now)
}

func NewMemorySessionRepositoryWithClock(now func() time.Time) *MemorySessionRepository {
	if now == nil {
		now = time.Now
	}
	return &MemorySessionRepository{
		byUser: make(map[string]*domain.Session),
		byHash: make(map[string]string),
		now:    now,
	}
}

func (r *MemorySessionRepository) Replace(_ context.Context, input domain.CreateSessionInput) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byUser[input.UserID]; ok {
		delete(r.byHash, old.TokenHash)
	}

	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    input.UserID,
		TokenHash: input.TokenHash,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
		ExpiresAt: input.ExpiresAt,
		CreatedAt: r.now(),
	}
	r.byUser[input.UserID] = session
	r.byHash[input.TokenHash] = input.UserID

	copied := *session
	return &copied, nil
}

func (r *MemorySessionRepository) FindByTokenHash(_ context.Context, tokenHash string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session := r.liveByHash(tokenHash)
	if session == nil {
		return nil, domain.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *MemorySessionRepository) FindByUserID(_ context.Context, userID string) ([]domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.byUser[userID]
	if !ok || !session.Live(r.now()) {
		return []domain.Session{}, nil
	}
	return []domain.Session{*session}, nil
}

func (r *MemorySessionRepository) Rotate(_ context.Context, input domain.RotateSessionInput) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session := r.liveByHash(input.OldTokenHash)
	if session == nil || session.ID != input.SessionID {
		return nil, domain.ErrNotFound
	}

	delete(r.byHash, session.TokenHash)
	session.TokenHash = input.NewTokenHash
	session.ExpiresAt = input.ExpiresAt
	r.byHash[input.NewTokenHash] = session.UserID

	copied := *session
	return &copied, nil
}

func (r *MemorySessionRepository) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.byHash[tokenHash]
	if !ok {
		return nil
	}
	delete(r.byHash, tokenHash)
	delete(r.byUser, userID)
	return nil
}

func (r *MemorySessionRepository) DeleteByUserID(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session, ok := r.byUser[userID]; ok {
		delete(r.byHash, session.TokenHash)
		delete(r.byUser, userID)
	}
	return nil
}

func (r *MemorySessionRepository) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var removed int64
	for userID, session := range r.byUser {
		if !session.Live(now) {
			delete(r.byHash, session.TokenHash)
			delete(r.byUser, userID)
			removed++
		}
	}
	return removed, nil
}

// Count reports stored rows, including expired ones not yet swept.
func (r *MemorySessionRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byUser)
}

func (r *MemorySessionRepository) liveByHash(tokenHash string) *domain.Session {
	userID, ok := r.byHash[tokenHash]
	if !ok {
		return nil
	}
	session := r.byUser[userID]
	if session == nil || !session.Live(r.now()) {
		return nil
	}
	return session
}

type MemoryAuditLogRepository struct {
	mu   sync.RWMutex
	logs []domain.AuditLog
	now  func() time.Time
}

func NewMemoryAuditLogRepository() *MemoryAuditLogRepository {
	return &MemoryAuditLogRepository{now: time.Now}
}

func (r *MemoryAuditLogRepository) Create(_ context.Context, input domain.CreateAuditLogInput) (*domain.AuditLog, error) {
	var details json.RawMessage
	if input.Details != nil {
		raw, err := json.Marshal(input.Details)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal details: %w", err)
		}
		details = raw
	}

	log := domain.AuditLog{
		ID:           uuid.NewString(),
		EventType:    input.EventType,
		ResourceType: input.ResourceType,
		ResourceID:   input.ResourceID,
		UserID:       input.UserID,
		UserEmail:    input.UserEmail,
		Details:      details,
		IPAddress:    input.IPAddress,
		UserAgent:    input.UserAgent,
		CreatedAt:    r.now(),
	}

	r.mu.Lock()
	r.logs = append(r.logs, log)
	r.mu.Unlock()

	return &log, nil
}

func (r *MemoryAuditLogRepository) FindAll(_ context.Context, filter domain.AuditLogFilter) ([]domain.AuditLog, int, error) {
	r.mu.RLock()
	matched := make([]domain.AuditLog, 0, len(r.logs))
	for _, log := range r.logs {
		if matchesAuditFilter(log, filter) {
			matched = append(matched, log)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	limit, offset := filter.Page()
	if offset >= total {
		return []domain.AuditLog{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func matchesAuditFilter(log domain.AuditLog, filter domain.AuditLogFilter) bool {
	if filter.EventType != nil && log.EventType != *filter.EventType {
		return false
	}
	if filter.UserID != nil && (log.UserID == nil || *log.UserID != *filter.UserID) {
		return false
	}
	if filter.StartDate != nil && log.CreatedAt.Before(*filter.StartDate) {
		return false
	}
	if filter.EndDate != nil && log.CreatedAt.After(*filter.EndDate) {
		return false
	}
	return true
}

var (
	_ domain.UserRepository     = (*MemoryUserRepository)(nil)
	_ domain.SessionRepository  = (*MemorySessionRepository)(nil)
	_ domain.AuditLogRepository = (*MemoryAuditLogRepository)(nil)
)
