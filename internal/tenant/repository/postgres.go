package repository

import (
	"context"
	"database/sql"
	"errors"

	"assetbase/backend/internal/tenant/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a tenant repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const tenantColumns = "id, slug, name, status, created_at"

// GetBySlug returns the tenant for slug, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+tenantColumns+" FROM tenants WHERE slug = $1", slug)
	return scanTenant(row)
}

// Create persists the tenant to the database. The tenant must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.Tenant) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO tenants (id, slug, name, status, created_at) VALUES ($1, $2, $3, $4, $5)",
		t.ID, t.Slug, t.Name, t.Status, t.CreatedAt)
	return err
}

func scanTenant(row *sql.Row) (*domain.Tenant, error) {
	var t domain.Tenant
	err := row.Scan(&t.ID, &t.Slug, &t.Name, &t.Status, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}
