package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Isaac-1-lang/Ecommerce/internal/domain"
)

type PostgresAuditLogRepository struct {
	db *sql.DB
}

func NewPostgresAuditLogRepository(db *sql.DB) *PostgresAuditLogRepository {
	return &PostgresAuditLogRepository{db: db}
}

func (r *PostgresAuditLogRepository) Create(ctx context.Context, input domain.CreateAuditLogInput) (*domain.AuditLog, error) {
	var detailsJSON []byte
	var err error
	if input.Details != nil {
		detailsJSON, err = json.Marshal(input.Details)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal details: %w", err)
		}
	}

	query := `
		INSERT INTO audit_logs (event_type, resource_type, resource_id, user_id, user_email, details, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, event_type, resource_type, resource_id, user_id, user_email, details, ip_address, user_agent, created_at
	`

	row := r.db.QueryRowContext(ctx,
		query,
		string(input.EventType),
		string(input.ResourceType),
		toNullString(input.ResourceID),
		toNullString(input.UserID),
		toNullString(input.UserEmail),
		detailsJSON,
		toNullString(input.IPAddress),
		toNullString(input.UserAgent),
	)

	log, err := scanAuditLogRow(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit log: %w", err)
	}
	return log, nil
}

func (r *PostgresAuditLogRepository) FindAll(ctx context.Context, filter domain.AuditLogFilter) ([]domain.AuditLog, int, error) {
	conditions, args := buildAuditFilters(filter)

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	total, err := r.countAuditLogs(ctx, whereClause, args)
	if err != nil {
		return nil, 0, err
	}

	limit, offset := filter.Page()
	query := buildAuditLogQuery(whereClause, len(args))
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0)
	for rows.Next() {
		log, err := scanAuditLogRow(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan audit log: %w", err)
		}
		logs = append(logs, *log)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

func buildAuditFilters(filter domain.AuditLogFilter) ([]string, []any) {
	var conditions []string
	var args []any
	argIndex := 1

	if filter.EventType != nil {
		conditions = append(conditions, fmt.Sprintf("event_type = $%d", argIndex))
		args = append(args, string(*filter.EventType))
		argIndex++
	}
	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIndex))
		args = append(args, *filter.UserID)
		argIndex++
	}
	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIndex))
		args = append(args, *filter.StartDate)
		argIndex++
	}
	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argIndex))
		args = append(args, *filter.EndDate)
	}

	return conditions, args
}

func (r *PostgresAuditLogRepository) countAuditLogs(ctx context.Context, whereClause string, args []any) (int, error) {
	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM audit_logs %s", whereClause)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count audit logs: %w", err)
	}
	return total, nil
}

func buildAuditLogQuery(whereClause string, argCount int) string {
	return fmt.Sprintf(`
		SELECT id, event_type, resource_type, resource_id, user_id, user_email, details, ip_address, user_agent, created_at
		FROM audit_logs
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argCount+1, argCount+2)
}

func scanAuditLogRow(row rowScanner) (*domain.AuditLog, error) {
	var log domain.AuditLog
	var eventType, resourceType string
	var resourceID, userID, userEmail, ipAddress, userAgent sql.NullString
	var details []byte

	err := row.Scan(
		&log.ID,
		&eventType,
		&resourceType,
		&resourceID,
		&userID,
		&userEmail,
		&details,
		&ipAddress,
		&userAgent,
		&log.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	log.EventType = domain.EventType(eventType)
	log.ResourceType = domain.ResourceType(resourceType)
	log.ResourceID = fromNullStringPtr(resourceID)
	log.UserID = fromNullStringPtr(userID)
	log.UserEmail = fromNullStringPtr(userEmail)
	log.IPAddress = fromNullStringPtr(ipAddress)
	log.UserAgent = fromNullStringPtr(userAgent)
	if len(details) > 0 {
		log.Details = details
	}

	return &log, nil
}

var _ domain.AuditLogRepository = (*PostgresAuditLogRepository)(nil)
