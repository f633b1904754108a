package domain

import "time"

// Severity classifies an audit event. Critical events indicate a probable
// attack (e.g. refresh token reuse) and are what alerting keys on.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Auth lifecycle actions recorded in the audit trail.
const (
	ActionLogin        = "login"
	ActionLoginFailure = "login_failure"
	ActionRefresh      = "refresh"
	ActionRefreshReuse = "refresh_reuse"
	ActionLogout       = "logout"
	ActionLogoutAll    = "logout_all"
)

// AuditLog is a single audit event. TenantID is always set; UserID and
// SessionID may be empty for events before identification (e.g. login_failure
// with an unknown email).
type AuditLog struct {
	ID        string            `json:"id"`
	TenantID  string            `json:"tenantId"`
	UserID    string            `json:"userId,omitempty"`
	SessionID string            `json:"sessionId,omitempty"`
	Action    string            `json:"action"`
	Severity  Severity          `json:"severity"`
	IP        string            `json:"ip,omitempty"`
	UserAgent string            `json:"userAgent,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}
