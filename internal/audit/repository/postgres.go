package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"assetbase/backend/internal/audit/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit log repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const auditColumns = "id, tenant_id, user_id, session_id, action, severity, ip, user_agent, metadata, created_at"

// Create persists the audit log. The entry must have ID, TenantID, and Action set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	meta, err := metadataToJSON(a.Metadata)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, tenant_id, user_id, session_id, action, severity, ip, user_agent, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.TenantID, a.UserID, a.SessionID, a.Action, a.Severity, a.IP, a.UserAgent, meta, a.CreatedAt)
	return err
}

// ListByTenant returns audit logs for the given tenant, newest first,
// paginated by limit and offset.
func (r *PostgresRepository) ListByTenant(ctx context.Context, tenantID string, limit, offset int32) ([]*domain.AuditLog, error) {
	if tenantID == "" {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+auditColumns+" FROM audit_logs WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.AuditLog
	for rows.Next() {
		a, err := scanAuditLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuditLog(row rowScanner) (*domain.AuditLog, error) {
	var (
		a    domain.AuditLog
		meta sql.NullString
	)
	err := row.Scan(&a.ID, &a.TenantID, &a.UserID, &a.SessionID, &a.Action, &a.Severity,
		&a.IP, &a.UserAgent, &meta, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	if meta.Valid && meta.String != "" {
		if err := json.Unmarshal([]byte(meta.String), &a.Metadata); err != nil {
			return nil, err
		}
	}
	return &a, nil
}

func metadataToJSON(m map[string]string) (sql.NullString, error) {
	if len(m) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
