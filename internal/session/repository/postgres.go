package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"assetbase/backend/internal/session/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const sessionColumns = "id, user_id, tenant_id, status, refresh_token_hash, consumed_at, user_agent, ip_address, expires_at, created_at"

// Create persists the session to the database. The session must have ID,
// UserID, and TenantID set; (user_id, tenant_id) is never updated afterwards.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	if s.TenantID == "" {
		return ErrTenantScopeRequired
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, tenant_id, status, refresh_token_hash, consumed_at, user_agent, ip_address, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		s.ID, s.UserID, s.TenantID, s.Status, s.RefreshTokenHash,
		timeToNullTime(s.ConsumedAt), s.UserAgent, s.IPAddress, s.ExpiresAt, s.CreatedAt)
	return err
}

// GetByIDAndTenant returns the session for (id, tenantID), or nil if not
// found. An empty tenantID matches nothing. It returns an error only for
// database failures, not for missing rows.
func (r *PostgresRepository) GetByIDAndTenant(ctx context.Context, id, tenantID string) (*domain.Session, error) {
	if tenantID == "" {
		return nil, nil
	}
	row := r.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE id = $1 AND tenant_id = $2", id, tenantID)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// ListByUserAndTenant returns all sessions for (userID, tenantID), newest
// first. An empty tenantID matches nothing.
func (r *PostgresRepository) ListByUserAndTenant(ctx context.Context, userID, tenantID string) ([]*domain.Session, error) {
	if tenantID == "" {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE user_id = $1 AND tenant_id = $2 ORDER BY created_at DESC",
		userID, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ConsumeActive performs the atomic consume-and-tombstone conditional update.
// One UPDATE statement carries every precondition; rows-affected decides the
// outcome, so concurrent callers cannot both win.
func (r *PostgresRepository) ConsumeActive(ctx context.Context, id, tenantID, refreshTokenHash string, now time.Time) (bool, error) {
	if tenantID == "" {
		return false, ErrTenantScopeRequired
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions
		 SET status = $1, consumed_at = $2
		 WHERE id = $3 AND tenant_id = $4 AND status = $5 AND refresh_token_hash = $6 AND expires_at > $2`,
		domain.StatusTombstoned, now, id, tenantID, domain.StatusActive, refreshTokenHash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// DeleteByIDAndTenant deletes the session row for (id, tenantID). Deleting a
// missing row is not an error.
func (r *PostgresRepository) DeleteByIDAndTenant(ctx context.Context, id, tenantID string) error {
	if tenantID == "" {
		return ErrTenantScopeRequired
	}
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE id = $1 AND tenant_id = $2", id, tenantID)
	return err
}

// DeleteAllByUserAndTenant deletes every session row for (userID, tenantID),
// active and tombstoned alike. Used for logout-all and cascade revoke.
func (r *PostgresRepository) DeleteAllByUserAndTenant(ctx context.Context, userID, tenantID string) error {
	if tenantID == "" {
		return ErrTenantScopeRequired
	}
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE user_id = $1 AND tenant_id = $2", userID, tenantID)
	return err
}

// DeleteExpired deletes every session past the cutoff and returns the number
// of rows removed.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE expires_at <= $1", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var (
		s          domain.Session
		consumedAt sql.NullTime
	)
	err := row.Scan(&s.ID, &s.UserID, &s.TenantID, &s.Status, &s.RefreshTokenHash,
		&consumedAt, &s.UserAgent, &s.IPAddress, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	s.ConsumedAt = nullTimeToPtr(consumedAt)
	return &s, nil
}

func timeToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullTimeToPtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	return &n.Time
}
