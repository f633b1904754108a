package domain

import (
	"errors"
	"time"
)

// Tenant represents an isolated organization. All data and sessions are
// partitioned by tenant id; this core only reads id, slug, and status.
type Tenant struct {
	ID        string
	Slug      string
	Name      string
	Status    TenantStatus
	CreatedAt time.Time
}

type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
)

// Active reports whether the tenant may authenticate users.
func (t *Tenant) Active() bool {
	return t != nil && t.Status == TenantStatusActive
}

// Validate validates the tenant for persistence. Returns an error describing the first validation failure.
func (t *Tenant) Validate() error {
	if t.Slug == "" {
		return errors.New("slug is required")
	}
	if t.Name == "" {
		return errors.New("name is required")
	}
	if t.Status == "" {
		t.Status = TenantStatusActive
	}
	return nil
}
