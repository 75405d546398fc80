package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Isaac-1-lang/Ecommerce/internal/domain"
)

const sessionColumns = `id, user_id, token_hash, ip_address, user_agent, expires_at, created_at`

// PostgresSessionRepository relies on UNIQUE(user_id) and an upsert so that
// concurrent Replace calls for one user always converge on a single row.
type PostgresSessionRepository struct {
	db *sql.DB
}

func NewPostgresSessionRepository(db *sql.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

func (r *PostgresSessionRepository) Replace(ctx context.Context, input domain.CreateSessionInput) (*domain.Session, error) {
	query := `
		INSERT INTO sessions (id, user_id, token_hash, ip_address, user_agent, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			id = EXCLUDED.id,
			token_hash = EXCLUDED.token_hash,
			ip_address = EXCLUDED.ip_address,
			user_agent = EXCLUDED.user_agent,
			expires_at = EXCLUDED.expires_at,
			created_at = EXCLUDED.created_at
		RETURNING ` + sessionColumns

	row := r.db.QueryRowContext(ctx, query,
		uuid.NewString(),
		input.UserID,
		input.TokenHash,
		toNullStringValue(input.IPAddress),
		toNullStringValue(input.UserAgent),
		input.ExpiresAt,
	)

	session, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("failed to replace session: %w", err)
	}
	return session, nil
}

func (r *PostgresSessionRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + `
		FROM sessions
		WHERE token_hash = $1 AND expires_at > NOW()`

	session, err := scanSession(r.db.QueryRowContext(ctx, query, tokenHash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return session, nil
}

func (r *PostgresSessionRepository) FindByUserID(ctx context.Context, userID string) ([]domain.Session, error) {
	query := `SELECT ` + sessionColumns + `
		FROM sessions
		WHERE user_id = $1 AND expires_at > NOW()
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]domain.Session, 0, 1)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *PostgresSessionRepository) Rotate(ctx context.Context, input domain.RotateSessionInput) (*domain.Session, error) {
	query := `
		UPDATE sessions
		SET token_hash = $1, expires_at = $2
		WHERE id = $3 AND token_hash = $4 AND expires_at > NOW()
		RETURNING ` + sessionColumns

	row := r.db.QueryRowContext(ctx, query,
		input.NewTokenHash,
		input.ExpiresAt,
		input.SessionID,
		input.OldTokenHash,
	)

	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to rotate session: %w", err)
	}
	return session, nil
}

func (r *PostgresSessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	query := `DELETE FROM sessions WHERE token_hash = $1`

	if _, err := r.db.ExecContext(ctx, query, tokenHash); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *PostgresSessionRepository) DeleteByUserID(ctx context.Context, userID string) error {
	query := `DELETE FROM sessions WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}

func (r *PostgresSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at <= NOW()`

	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var session domain.Session
	var ipAddress, userAgent sql.NullString

	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.TokenHash,
		&ipAddress,
		&userAgent,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	session.IPAddress = fromNullString(ipAddress)
	session.UserAgent = fromNullString(userAgent)

	return &session, nil
}

var _ domain.SessionRepository = (*PostgresSessionRepository)(nil)
