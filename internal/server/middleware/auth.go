// Package middleware provides the HTTP authentication middleware that turns a
// verified access token plus a live session row into a tenant context.
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"assetbase/backend/internal/platform/rbac"
	"assetbase/backend/internal/security"
	"assetbase/backend/internal/server/respond"
	sessiondomain "assetbase/backend/internal/session/domain"
	userdomain "assetbase/backend/internal/user/domain"
)

// AccessCookieName is the cookie carrying the access token.
const AccessCookieName = "ab_access"

// SessionRepo is the minimal session repository needed by the middleware.
type SessionRepo interface {
	GetByIDAndTenant(ctx context.Context, id, tenantID string) (*sessiondomain.Session, error)
}

// Authenticator builds the tenant context for incoming requests. Verification
// is token first, then a session lookup scoped by the token's own tenant, then
// an equality check of the stored identity against the token claims. Any
// mismatch fails closed.
type Authenticator struct {
	tokens   *security.TokenProvider
	sessions SessionRepo
	logger   *zap.Logger
}

// NewAuthenticator returns an Authenticator with the given dependencies.
func NewAuthenticator(tokens *security.TokenProvider, sessions SessionRepo, logger *zap.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, sessions: sessions, logger: logger}
}

// Require rejects the request with a generic 401 unless a tenant context can
// be built.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tc, ok := a.authenticate(r)
		if !ok {
			respond.Unauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(rbac.WithTenantContext(r.Context(), tc)))
	})
}

// Optional attaches a tenant context when the request carries valid
// credentials and passes the request through anonymously otherwise. No
// distinction between absent and invalid credentials is observable.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tc, ok := a.authenticate(r); ok {
			r = r.WithContext(rbac.WithTenantContext(r.Context(), tc))
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePermission rejects with 403 unless the authenticated caller holds
// perm. Mount after Require.
func RequirePermission(perm rbac.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := rbac.Require(r.Context(), perm); err != nil {
				respond.Forbidden(w, string(err.(*rbac.PermissionError).Missing))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *Authenticator) authenticate(r *http.Request) (*rbac.TenantContext, bool) {
	token := extractToken(r)
	if token == "" {
		return nil, false
	}
	claims, err := a.tokens.VerifyAccess(token)
	if err != nil {
		return nil, false
	}

	sess, err := a.sessions.GetByIDAndTenant(r.Context(), claims.SessionID, claims.TenantID)
	if err != nil {
		a.logger.Error("auth: session lookup failed", zap.Error(err))
		return nil, false
	}
	// A tombstoned session still authenticates: rotation consumes the refresh
	// token, not the access token, which stays valid until its own expiry.
	// Only a deleted or expired session row kills it.
	if sess == nil || sess.Expired(time.Now().UTC()) {
		return nil, false
	}
	if sess.UserID != claims.UserID || sess.TenantID != claims.TenantID {
		a.logger.Warn("auth: session identity mismatch",
			zap.String("session_id", claims.SessionID),
			zap.String("tenant_id", claims.TenantID))
		return nil, false
	}

	return rbac.NewTenantContext(claims.TenantID, claims.UserID, claims.SessionID, userdomain.Role(claims.Role)), true
}

// extractToken returns the access token from the ab_access cookie or the
// Authorization header ("Bearer TOKEN"). The header takes precedence.
func extractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if strings.HasPrefix(h, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		}
		return ""
	}
	if c, err := r.Cookie(AccessCookieName); err == nil {
		return c.Value
	}
	return ""
}
