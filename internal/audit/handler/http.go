// Package handler exposes the tenant-scoped audit trail over HTTP, read-only.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"assetbase/backend/internal/audit/domain"
	auditrepo "assetbase/backend/internal/audit/repository"
	"assetbase/backend/internal/platform/rbac"
	"assetbase/backend/internal/server/respond"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// HTTPHandler serves the /v1/audit endpoints.
type HTTPHandler struct {
	repo   auditrepo.Repository
	logger *zap.Logger
}

// NewHTTPHandler returns an HTTPHandler with the given dependencies.
func NewHTTPHandler(repo auditrepo.Repository, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{repo: repo, logger: logger}
}

type logResponse struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId,omitempty"`
	SessionID string            `json:"sessionId,omitempty"`
	Action    string            `json:"action"`
	Severity  string            `json:"severity"`
	IP        string            `json:"ip,omitempty"`
	UserAgent string            `json:"userAgent,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// List returns the caller's tenant audit trail, newest first, paginated with
// limit/offset query parameters. Mounted behind the audit:read permission.
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	tc, ok := rbac.FromContext(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	limit := queryInt(r, "limit", defaultPageSize)
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	list, err := h.repo.ListByTenant(r.Context(), tc.TenantID, int32(limit), int32(offset))
	if err != nil {
		h.logger.Error("audit listing failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal", "could not list audit logs")
		return
	}
	out := make([]logResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toLogResponse(a))
	}
	respond.JSON(w, http.StatusOK, map[string]any{"logs": out})
}

func toLogResponse(a *domain.AuditLog) logResponse {
	return logResponse{
		ID:        a.ID,
		UserID:    a.UserID,
		SessionID: a.SessionID,
		Action:    a.Action,
		Severity:  string(a.Severity),
		IP:        a.IP,
		UserAgent: a.UserAgent,
		Metadata:  a.Metadata,
		CreatedAt: a.CreatedAt,
	}
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
