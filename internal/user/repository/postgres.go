package repository

import (
	"context"
	"database/sql"
	"errors"

	"assetbase/backend/internal/user/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = "id, tenant_id, email, password_hash, role, status, created_at, updated_at"

// GetByTenantAndEmail returns the user for (tenantID, email), or nil if not
// found. An empty tenantID matches nothing. It returns an error only for
// database failures, not for missing rows.
func (r *PostgresRepository) GetByTenantAndEmail(ctx context.Context, tenantID, email string) (*domain.User, error) {
	if tenantID == "" {
		return nil, nil
	}
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE tenant_id = $1 AND email = $2", tenantID, email)
	return scanUser(row)
}

// GetByTenantAndID returns the user for (tenantID, id), or nil if not found.
// An empty tenantID matches nothing.
func (r *PostgresRepository) GetByTenantAndID(ctx context.Context, tenantID, id string) (*domain.User, error) {
	if tenantID == "" {
		return nil, nil
	}
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE tenant_id = $1 AND id = $2", tenantID, id)
	return scanUser(row)
}

// Create persists the user to the database. The user must have ID and TenantID set.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, tenant_id, email, password_hash, role, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.TenantID, u.Email, u.PasswordHash, u.Role, u.Status, u.CreatedAt, u.UpdatedAt)
	return err
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.TenantID, &u.Email, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
