package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"assetbase/backend/internal/platform/rbac"
	"assetbase/backend/internal/security"
	sessiondomain "assetbase/backend/internal/session/domain"
	userdomain "assetbase/backend/internal/user/domain"
)

type memSessionRepo struct {
	m map[string]*sessiondomain.Session
}

func (r *memSessionRepo) GetByIDAndTenant(_ context.Context, id, tenantID string) (*sessiondomain.Session, error) {
	s := r.m[id]
	if s == nil || tenantID == "" || s.TenantID != tenantID {
		return nil, nil
	}
	return s, nil
}

type authHarness struct {
	auth     *Authenticator
	tokens   *security.TokenProvider
	sessions *memSessionRepo
}

func newAuthHarness(t *testing.T) *authHarness {
	t.Helper()
	tokens, err := security.NewTestTokenProvider(time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	sessions := &memSessionRepo{m: map[string]*sessiondomain.Session{}}
	return &authHarness{
		auth:     NewAuthenticator(tokens, sessions, zap.NewNop()),
		tokens:   tokens,
		sessions: sessions,
	}
}

// issue mints an access token and a matching active session row.
func (h *authHarness) issue(t *testing.T, sessionID, userID, tenantID string, role userdomain.Role) string {
	t.Helper()
	token, _, err := h.tokens.IssueAccess(sessionID, userID, tenantID, string(role))
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	h.sessions.m[sessionID] = &sessiondomain.Session{
		ID: sessionID, UserID: userID, TenantID: tenantID,
		Status:    sessiondomain.StatusActive,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
		CreatedAt: time.Now().UTC(),
	}
	return token
}

func echoContext(t *testing.T, got **rbac.TenantContext) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tc, ok := rbac.FromContext(r.Context()); ok {
			*got = tc
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequire_CookieToken(t *testing.T) {
	h := newAuthHarness(t)
	token := h.issue(t, "sess-1", "user-1", "tenant-1", userdomain.RoleAdmin)

	var got *rbac.TenantContext
	srv := h.auth.Require(echoContext(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookieName, Value: token})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got == nil {
		t.Fatal("tenant context not attached")
	}
	if got.UserID != "user-1" || got.TenantID != "tenant-1" || got.SessionID != "sess-1" || got.Role != userdomain.RoleAdmin {
		t.Errorf("context = %+v", got)
	}
	if !got.Has(rbac.PermUserManage) {
		t.Error("admin context should hold user:manage")
	}
}

func TestRequire_BearerToken(t *testing.T) {
	h := newAuthHarness(t)
	token := h.issue(t, "sess-1", "user-1", "tenant-1", userdomain.RoleViewer)

	var got *rbac.TenantContext
	srv := h.auth.Require(echoContext(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || got == nil {
		t.Fatalf("status = %d, context = %v", rec.Code, got)
	}
}

func TestRequire_Rejections(t *testing.T) {
	h := newAuthHarness(t)
	valid := h.issue(t, "sess-1", "user-1", "tenant-1", userdomain.RoleMember)

	orphan, _, err := h.tokens.IssueAccess("sess-gone", "user-1", "tenant-1", "member")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	mismatched := h.issue(t, "sess-2", "user-1", "tenant-1", userdomain.RoleMember)
	h.sessions.m["sess-2"].UserID = "someone-else"

	expired := h.issue(t, "sess-4", "user-1", "tenant-1", userdomain.RoleMember)
	h.sessions.m["sess-4"].ExpiresAt = time.Now().UTC().Add(-time.Minute)

	cases := []struct {
		name  string
		token string
	}{
		{"no token", ""},
		{"garbage token", "garbage"},
		{"session deleted", orphan},
		{"session user mismatch", mismatched},
		{"session expired", expired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := h.auth.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler must not run")
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.token != "" {
				req.AddCookie(&http.Cookie{Name: AccessCookieName, Value: tc.token})
			}
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}

	// The valid token still works after all the rejections.
	var got *rbac.TenantContext
	srv := h.auth.Require(echoContext(t, &got))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookieName, Value: valid})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("valid token rejected: %d", rec.Code)
	}
}

// A rotated-away session keeps authenticating access tokens until they expire
// on their own; consumption only invalidates the refresh side.
func TestRequire_TombstonedSessionStillAuthenticates(t *testing.T) {
	h := newAuthHarness(t)
	token := h.issue(t, "sess-1", "user-1", "tenant-1", userdomain.RoleMember)
	now := time.Now().UTC()
	h.sessions.m["sess-1"].Status = sessiondomain.StatusTombstoned
	h.sessions.m["sess-1"].ConsumedAt = &now

	var got *rbac.TenantContext
	srv := h.auth.Require(echoContext(t, &got))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookieName, Value: token})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got == nil || got.SessionID != "sess-1" {
		t.Errorf("context = %+v", got)
	}
}

func TestOptional(t *testing.T) {
	h := newAuthHarness(t)
	token := h.issue(t, "sess-1", "user-1", "tenant-1", userdomain.RoleMember)

	var got *rbac.TenantContext
	srv := h.auth.Optional(echoContext(t, &got))

	// Anonymous request passes through without a context.
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("anonymous status = %d, want 200", rec.Code)
	}
	if got != nil {
		t.Fatal("anonymous request must not carry a tenant context")
	}

	// Invalid credentials also pass through anonymously.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookieName, Value: "garbage"})
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || got != nil {
		t.Fatal("invalid credentials must degrade to anonymous")
	}

	// Valid credentials attach the context.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookieName, Value: token})
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if got == nil || got.UserID != "user-1" {
		t.Errorf("context = %+v, want user-1", got)
	}
}

func TestRequirePermission(t *testing.T) {
	h := newAuthHarness(t)
	viewer := h.issue(t, "sess-1", "user-1", "tenant-1", userdomain.RoleViewer)
	admin := h.issue(t, "sess-2", "user-2", "tenant-1", userdomain.RoleAdmin)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	srv := h.auth.Require(RequirePermission(rbac.PermUserManage)(ok))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookieName, Value: viewer})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("viewer status = %d, want 403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookieName, Value: admin})
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("admin status = %d, want 200", rec.Code)
	}
}
