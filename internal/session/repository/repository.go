package repository

import (
	"context"
	"errors"
	"time"

	"assetbase/backend/internal/session/domain"
)

// ErrTenantScopeRequired is returned by mutations called without a tenant
// scope. Lookups with an empty tenant scope simply match nothing. Both are
// the storage-layer enforcement of tenant isolation: there is no unscoped
// view to fall back to.
var ErrTenantScopeRequired = errors.New("session repository: tenant scope is required")

// Repository defines persistence for sessions. Every operation is scoped by
// tenantID and fails closed when the scope is missing.
type Repository interface {
	Create(ctx context.Context, s *domain.Session) error
	GetByIDAndTenant(ctx context.Context, id, tenantID string) (*domain.Session, error)
	ListByUserAndTenant(ctx context.Context, userID, tenantID string) ([]*domain.Session, error)

	// ConsumeActive atomically transitions the session (id, tenantID) from
	// active with the given refresh-token hash and not expired at now, to
	// tombstoned with consumed_at = now. It is a single conditional storage
	// mutation: under N concurrent calls with the same arguments exactly one
	// observes consumed == true.
	ConsumeActive(ctx context.Context, id, tenantID, refreshTokenHash string, now time.Time) (consumed bool, err error)

	DeleteByIDAndTenant(ctx context.Context, id, tenantID string) error
	DeleteAllByUserAndTenant(ctx context.Context, userID, tenantID string) error

	// DeleteExpired removes every session (active or tombstoned) whose expiry
	// is at or before the cutoff, across all tenants. Used by the sweeper;
	// expired rows are already unreachable for authentication.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
