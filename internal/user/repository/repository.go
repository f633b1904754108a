package repository

import (
	"context"

	"assetbase/backend/internal/user/domain"
)

// Repository defines persistence for users. Every lookup is scoped by tenant;
// there is no unscoped variant, so a caller cannot reach across tenants even
// with a known user id.
type Repository interface {
	GetByTenantAndEmail(ctx context.Context, tenantID, email string) (*domain.User, error)
	GetByTenantAndID(ctx context.Context, tenantID, id string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
}
