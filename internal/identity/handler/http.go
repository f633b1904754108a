// Package handler exposes the auth lifecycle over HTTP: login, refresh,
// logout, logout-all, session listing, and identity introspection.
package handler

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"assetbase/backend/internal/identity/service"
	"assetbase/backend/internal/platform/rbac"
	"assetbase/backend/internal/server/middleware"
	"assetbase/backend/internal/server/respond"
	sessiondomain "assetbase/backend/internal/session/domain"
)

// RefreshCookieName is the cookie carrying the refresh token. It is scoped to
// the auth endpoint namespace so browsers never send it anywhere else.
const RefreshCookieName = "ab_refresh"

// RefreshCookiePath is the Path attribute of the refresh cookie.
const RefreshCookiePath = "/v1/auth"

// CookieConfig controls the attributes of the auth cookies.
type CookieConfig struct {
	Domain string
	Secure bool
}

// HTTPHandler serves the /v1/auth endpoints.
type HTTPHandler struct {
	svc     *service.AuthService
	cookies CookieConfig
	logger  *zap.Logger
}

// NewHTTPHandler returns an HTTPHandler with the given dependencies.
func NewHTTPHandler(svc *service.AuthService, cookies CookieConfig, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, cookies: cookies, logger: logger}
}

type loginRequest struct {
	Tenant   string `json:"tenant"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	AccessToken     string    `json:"accessToken"`
	AccessExpiresAt time.Time `json:"accessExpiresAt"`
	SessionID       string    `json:"sessionId"`
	UserID          string    `json:"userId"`
	TenantID        string    `json:"tenantId"`
	Email           string    `json:"email"`
	Role            string    `json:"role"`
	Permissions     []string  `json:"permissions"`
}

// Login authenticates tenant/email/password and starts a session. Both auth
// cookies are set on success; every failure is the generic 401.
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Unauthorized(w)
		return
	}
	res, err := h.svc.Login(r.Context(), req.Tenant, req.Email, req.Password, clientInfo(r))
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			h.logger.Error("login failed", zap.Error(err))
			respond.Error(w, http.StatusInternalServerError, "internal", "could not process login")
			return
		}
		respond.Unauthorized(w)
		return
	}
	h.setAuthCookies(w, res)
	respond.JSON(w, http.StatusOK, toAuthResponse(res))
}

// Refresh rotates the refresh token from the ab_refresh cookie. On success the
// caller gets a brand-new pair; on any failure the cookies are cleared and the
// generic 401 is returned, whether the token was garbage, expired, or reused.
func (h *HTTPHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := cookieValue(r, RefreshCookieName)
	res, err := h.svc.Refresh(r.Context(), token, clientInfo(r))
	if err != nil {
		if !errors.Is(err, service.ErrInvalidRefreshToken) && !errors.Is(err, service.ErrRefreshTokenReuse) {
			// Cookies stay; a storage outage must not log the caller out.
			h.logger.Error("refresh failed", zap.Error(err))
			respond.Error(w, http.StatusInternalServerError, "internal", "could not process refresh")
			return
		}
		h.clearAuthCookies(w)
		respond.Unauthorized(w)
		return
	}
	h.setAuthCookies(w, res)
	respond.JSON(w, http.StatusOK, toAuthResponse(res))
}

// Logout deletes the authenticated caller's session and clears both cookies.
// Mounted behind the auth middleware.
func (h *HTTPHandler) Logout(w http.ResponseWriter, r *http.Request) {
	tc, ok := rbac.FromContext(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	if err := h.svc.Logout(r.Context(), tc.SessionID, tc.TenantID, tc.UserID, clientInfo(r)); err != nil {
		h.logger.Error("logout failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal", "could not revoke session")
		return
	}
	h.clearAuthCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

// LogoutAll deletes every session of the authenticated user in their tenant.
// Mounted behind the auth middleware.
func (h *HTTPHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	tc, ok := rbac.FromContext(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	if err := h.svc.LogoutAll(r.Context(), tc.UserID, tc.TenantID, clientInfo(r)); err != nil {
		h.logger.Error("logout-all failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal", "could not revoke sessions")
		return
	}
	h.clearAuthCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

type sessionResponse struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	UserAgent string    `json:"userAgent,omitempty"`
	IPAddress string    `json:"ipAddress,omitempty"`
	Current   bool      `json:"current"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Sessions lists the authenticated user's sessions in their tenant, marking
// the one backing the current request.
func (h *HTTPHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	tc, ok := rbac.FromContext(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	list, err := h.svc.Sessions(r.Context(), tc.UserID, tc.TenantID)
	if err != nil {
		h.logger.Error("session listing failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal", "could not list sessions")
		return
	}
	out := make([]sessionResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toSessionResponse(s, tc.SessionID))
	}
	respond.JSON(w, http.StatusOK, map[string]any{"sessions": out})
}

type meResponse struct {
	UserID      string   `json:"userId"`
	TenantID    string   `json:"tenantId"`
	SessionID   string   `json:"sessionId"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// Me returns the authenticated caller's resolved tenant context.
func (h *HTTPHandler) Me(w http.ResponseWriter, r *http.Request) {
	tc, ok := rbac.FromContext(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	perms := make([]string, 0, len(tc.Permissions))
	for _, p := range tc.Permissions {
		perms = append(perms, string(p))
	}
	respond.JSON(w, http.StatusOK, meResponse{
		UserID:      tc.UserID,
		TenantID:    tc.TenantID,
		SessionID:   tc.SessionID,
		Role:        string(tc.Role),
		Permissions: perms,
	})
}

func (h *HTTPHandler) setAuthCookies(w http.ResponseWriter, res *service.AuthResult) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessCookieName,
		Value:    res.AccessToken,
		Path:     "/",
		Domain:   h.cookies.Domain,
		Expires:  res.AccessExpiresAt,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    res.RefreshToken,
		Path:     RefreshCookiePath,
		Domain:   h.cookies.Domain,
		Expires:  res.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *HTTPHandler) clearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.cookies.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     RefreshCookiePath,
		Domain:   h.cookies.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func toAuthResponse(res *service.AuthResult) authResponse {
	resolved := rbac.PermissionsForRole(res.Role)
	perms := make([]string, 0, len(resolved))
	for _, p := range resolved {
		perms = append(perms, string(p))
	}
	return authResponse{
		AccessToken:     res.AccessToken,
		AccessExpiresAt: res.AccessExpiresAt,
		SessionID:       res.SessionID,
		UserID:          res.UserID,
		TenantID:        res.TenantID,
		Email:           res.Email,
		Role:            string(res.Role),
		Permissions:     perms,
	}
}

func toSessionResponse(s *sessiondomain.Session, currentID string) sessionResponse {
	return sessionResponse{
		ID:        s.ID,
		Status:    string(s.Status),
		UserAgent: s.UserAgent,
		IPAddress: s.IPAddress,
		Current:   s.ID == currentID,
		ExpiresAt: s.ExpiresAt,
		CreatedAt: s.CreatedAt,
	}
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// clientInfo extracts the request metadata recorded in sessions and audit
// events. RemoteAddr has already been rewritten by the RealIP middleware.
func clientInfo(r *http.Request) service.ClientInfo {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return service.ClientInfo{UserAgent: r.UserAgent(), IP: ip}
}
