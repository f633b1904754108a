package rbac

import (
	"context"
	"fmt"
)

// PermissionError reports a failed mandatory permission check. It carries the
// specific missing permission and maps to a fixed "forbidden" classification
// at the HTTP boundary.
type PermissionError struct {
	Missing Permission
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("missing permission %q", e.Missing)
}

// Has returns true if the authenticated caller holds perm.
// An unauthenticated context holds nothing.
func Has(ctx context.Context, perm Permission) bool {
	tc, ok := FromContext(ctx)
	if !ok {
		return false
	}
	return tc.Has(perm)
}

// HasAny returns true if the caller holds at least one of perms.
func HasAny(ctx context.Context, perms ...Permission) bool {
	for _, p := range perms {
		if Has(ctx, p) {
			return true
		}
	}
	return false
}

// HasAll returns true if the caller holds every one of perms.
func HasAll(ctx context.Context, perms ...Permission) bool {
	for _, p := range perms {
		if !Has(ctx, p) {
			return false
		}
	}
	return true
}

// Require returns nil if the caller holds perm; otherwise a *PermissionError
// naming it.
func Require(ctx context.Context, perm Permission) error {
	if Has(ctx, perm) {
		return nil
	}
	return &PermissionError{Missing: perm}
}

// RequireAny returns nil if the caller holds at least one of perms; otherwise
// a *PermissionError naming the first.
func RequireAny(ctx context.Context, perms ...Permission) error {
	if HasAny(ctx, perms...) {
		return nil
	}
	var missing Permission
	if len(perms) > 0 {
		missing = perms[0]
	}
	return &PermissionError{Missing: missing}
}

// RequireAll returns nil if the caller holds every one of perms; otherwise a
// *PermissionError naming the first missing one.
func RequireAll(ctx context.Context, perms ...Permission) error {
	for _, p := range perms {
		if !Has(ctx, p) {
			return &PermissionError{Missing: p}
		}
	}
	return nil
}

// Has reports whether the context's resolved permission set contains perm.
func (tc *TenantContext) Has(perm Permission) bool {
	if tc == nil {
		return false
	}
	for _, p := range tc.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
