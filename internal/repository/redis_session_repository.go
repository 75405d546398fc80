package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Isaac-1-lang/Ecommerce/internal/crypto"
	"github.com/Isaac-1-lang/Ecommerce/internal/domain"
)

const (
	redisSessionPrefix = "session:"
	redisTxRetries     = 5
)

var errRedisTxConflict = errors.New("session changed concurrently")

// replaceScript swaps the user's session in one step: the token key the
// user pointer names is dropped, then the new record and pointer are set.
// KEYS: user pointer, new token key. ARGV: token key prefix, record, new
// token hash, ttl in ms.
var replaceScript = redis.NewScript(`
local old = redis.call("GET", KEYS[1])
if old then
	redis.call("DEL", ARGV[1] .. old)
end
redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[4])
redis.call("SET", KEYS[1], ARGV[3], "PX", ARGV[4])
return 1
`)

type redisSession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	TokenHash string    `json:"tokenHash"`
	IPAddress string    `json:"ipAddress,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// RedisSessionRepository stores each session twice: the record under its
// token hash and a pointer from the user id to that hash. Both keys carry
// the session's remaining lifetime as TTL, so expired sessions vanish
// without a sweep. Replace runs as a Lua script so concurrent logins never
// conflict; the other writes that touch the user pointer run under WATCH.
type RedisSessionRepository struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return NewRedisSessionRepositoryWithClock(client, time.Now)
}

func NewRedisSessionRepositoryWithClock(client *redis.Client, now func() time.Time) *RedisSessionRepository {
	if now == nil {
		now = time.Now
	}
	return &RedisSessionRepository{client: client, now: now}
}

func tokenKey(tokenHash string) string {
	return redisSessionPrefix + "token:" + tokenHash
}

func userKey(userID string) string {
	return redisSessionPrefix + "user:" + userID
}

func (r *RedisSessionRepository) Replace(ctx context.Context, input domain.CreateSessionInput) (*domain.Session, error) {
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    input.UserID,
		TokenHash: input.TokenHash,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
		ExpiresAt: input.ExpiresAt,
		CreatedAt: r.now(),
	}
	payload, err := encodeRedisSession(session)
	if err != nil {
		return nil, err
	}
	ttl := r.ttlFor(session.ExpiresAt)

	keys := []string{userKey(input.UserID), tokenKey(session.TokenHash)}
	err = replaceScript.Run(ctx, r.client, keys,
		tokenKey(""), payload, session.TokenHash, ttl.Milliseconds()).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to replace session: %w", err)
	}
	return session, nil
}

func (r *RedisSessionRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	return r.load(ctx, r.client, tokenHash)
}

func (r *RedisSessionRepository) FindByUserID(ctx context.Context, userID string) ([]domain.Session, error) {
	hash, err := r.client.Get(ctx, userKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return []domain.Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	session, err := r.load(ctx, r.client, hash)
	if errors.Is(err, domain.ErrNotFound) {
		return []domain.Session{}, nil
	}
	if err != nil {
		return nil, err
	}
	return []domain.Session{*session}, nil
}

func (r *RedisSessionRepository) Rotate(ctx context.Context, input domain.RotateSessionInput) (*domain.Session, error) {
	uKey := userKey(input.UserID)
	oldKey := tokenKey(input.OldTokenHash)
	var rotated *domain.Session

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, uKey).Result()
		if errors.Is(err, redis.Nil) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		if !crypto.EqualHashes(current, input.OldTokenHash) {
			return domain.ErrNotFound
		}

		session, err := r.load(ctx, tx, input.OldTokenHash)
		if err != nil {
			return err
		}
		if session.ID != input.SessionID {
			return domain.ErrNotFound
		}

		session.TokenHash = input.NewTokenHash
		session.ExpiresAt = input.ExpiresAt
		payload, err := encodeRedisSession(session)
		if err != nil {
			return err
		}
		ttl := r.ttlFor(session.ExpiresAt)

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, oldKey)
			pipe.Set(ctx, tokenKey(input.NewTokenHash), payload, ttl)
			pipe.Set(ctx, uKey, input.NewTokenHash, ttl)
			return nil
		})
		if err == nil {
			rotated = session
		}
		return err
	}

	if err := r.watch(ctx, txf, uKey, oldKey); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to rotate session: %w", err)
	}
	return rotated, nil
}

func (r *RedisSessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	session, err := r.load(ctx, r.client, tokenHash)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	uKey := userKey(session.UserID)
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, uKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, tokenKey(tokenHash))
			if current == tokenHash {
				pipe.Del(ctx, uKey)
			}
			return nil
		})
		return err
	}

	if err := r.watch(ctx, txf, uKey); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *RedisSessionRepository) DeleteByUserID(ctx context.Context, userID string) error {
	uKey := userKey(userID)
	txf := func(tx *redis.Tx) error {
		hash, err := tx.Get(ctx, uKey).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, tokenKey(hash), uKey)
			return nil
		})
		return err
	}

	if err := r.watch(ctx, txf, uKey); err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op: key TTLs already evict expired sessions.
func (r *RedisSessionRepository) DeleteExpired(context.Context) (int64, error) {
	return 0, nil
}

func (r *RedisSessionRepository) watch(ctx context.Context, txf func(*redis.Tx) error, keys ...string) error {
	for i := 0; i < redisTxRetries; i++ {
		err := r.client.Watch(ctx, txf, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return errRedisTxConflict
}

func (r *RedisSessionRepository) load(ctx context.Context, c redis.Cmdable, tokenHash string) (*domain.Session, error) {
	raw, err := c.Get(ctx, tokenKey(tokenHash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	var stored redisSession
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	session := &domain.Session{
		ID:        stored.ID,
		UserID:    stored.UserID,
		TokenHash: stored.TokenHash,
		IPAddress: stored.IPAddress,
		UserAgent: stored.UserAgent,
		ExpiresAt: stored.ExpiresAt,
		CreatedAt: stored.CreatedAt,
	}
	if !session.Live(r.now()) {
		return nil, domain.ErrNotFound
	}
	return session, nil
}

func (r *RedisSessionRepository) ttlFor(expiresAt time.Time) time.Duration {
	ttl := expiresAt.Sub(r.now())
	if ttl < time.Millisecond {
		return time.Millisecond
	}
	return ttl
}

func encodeRedisSession(s *domain.Session) ([]byte, error) {
	payload, err := json.Marshal(redisSession{
		ID:        s.ID,
		UserID:    s.UserID,
		TokenHash: s.TokenHash,
		IPAddress: s.IPAddress,
		UserAgent: s.UserAgent,
		ExpiresAt: s.ExpiresAt,
		CreatedAt: s.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	return payload, nil
}

var _ domain.SessionRepository = (*RedisSessionRepository)(nil)
