package repository

import (
	"context"

	"assetbase/backend/internal/tenant/domain"
)

// Repository defines persistence for tenants. The auth core only resolves
// tenants by slug at login; Create exists for seeding and admin tooling.
type Repository interface {
	GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error)
	Create(ctx context.Context, t *domain.Tenant) error
}
