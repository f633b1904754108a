package rbac

import (
	"context"

	userdomain "assetbase/backend/internal/user/domain"
)

// TenantContext is the validated, tenant-scoped identity attached to an
// authenticated request. It is the only object downstream code may trust for
// authorization decisions.
type TenantContext struct {
	TenantID    string
	UserID      string
	SessionID   string
	Role        userdomain.Role
	Permissions []Permission
}

// NewTenantContext builds a TenantContext with permissions resolved from role.
func NewTenantContext(tenantID, userID, sessionID string, role userdomain.Role) *TenantContext {
	return &TenantContext{
		TenantID:    tenantID,
		UserID:      userID,
		SessionID:   sessionID,
		Role:        role,
		Permissions: PermissionsForRole(role),
	}
}

type contextKey struct{ name string }

var tenantContextKey = contextKey{"tenant_context"}

// WithTenantContext returns a context carrying tc. The auth middleware sets it
// after every verification step has passed.
func WithTenantContext(ctx context.Context, tc *TenantContext) context.Context {
	return context.WithValue(ctx, tenantContextKey, tc)
}

// FromContext returns the TenantContext and true if the request is
// authenticated; otherwise nil, false.
func FromContext(ctx context.Context) (*TenantContext, bool) {
	tc, ok := ctx.Value(tenantContextKey).(*TenantContext)
	if !ok || tc == nil {
		return nil, false
	}
	return tc, true
}
