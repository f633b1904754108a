package domain

import "time"

// Session represents one lineage of refresh-token issuance for one user at a
// point in time. (UserID, TenantID) is immutable after creation. The raw
// refresh token is never stored; RefreshTokenHash holds its SHA-256 digest.
type Session struct {
	ID               string
	UserID           string
	TenantID         string
	Status           Status
	RefreshTokenHash string
	ConsumedAt       *time.Time // set when the session transitions to tombstoned
	UserAgent        string
	IPAddress        string
	ExpiresAt        time.Time
	CreatedAt        time.Time
}

// Status is the session state. A session is in exactly one of active or
// tombstoned while its row exists; purged means the row was deleted.
type Status string

const (
	// StatusActive means the stored hash matches the one live refresh token.
	StatusActive Status = "active"
	// StatusTombstoned means the refresh token was already rotated. The row is
	// retained so a delayed duplicate presentation is observable as reuse
	// rather than simply "not found".
	StatusTombstoned Status = "tombstoned"
)

// Expired reports whether the session is past its expiry at the given instant.
func (s *Session) Expired(now time.Time) bool {
	return s != nil && !s.ExpiresAt.After(now)
}
