// seed inserts development sample data for local testing.
// Idempotent: skips inserts when the demo tenant already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"assetbase/backend/internal/config"
	"assetbase/backend/internal/db"
	"assetbase/backend/internal/security"
	tenantdomain "assetbase/backend/internal/tenant/domain"
	tenantrepo "assetbase/backend/internal/tenant/repository"
	userdomain "assetbase/backend/internal/user/domain"
	userrepo "assetbase/backend/internal/user/repository"
)

const (
	demoTenantSlug = "demo"
	demoPassword   = "admin123!"
)

// seedUsers covers every role so permission behavior can be exercised locally.
var seedUsers = []struct {
	email string
	role  userdomain.Role
}{
	{"admin@demo.local", userdomain.RoleOwner},
	{"manager@demo.local", userdomain.RoleAdmin},
	{"alice@demo.local", userdomain.RoleMember},
	{"bob@demo.local", userdomain.RoleViewer},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is not set")
		os.Exit(1)
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	tenants := tenantrepo.NewPostgresRepository(database)
	users := userrepo.NewPostgresRepository(database)

	existing, err := tenants.GetBySlug(ctx, demoTenantSlug)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	if existing != nil {
		log.Printf("seed: tenant %q already present, nothing to do", demoTenantSlug)
		return
	}

	now := time.Now().UTC()
	tenant := &tenantdomain.Tenant{
		ID:        uuid.New().String(),
		Slug:      demoTenantSlug,
		Name:      "Demo Tenant",
		Status:    tenantdomain.TenantStatusActive,
		CreatedAt: now,
	}
	if err := tenants.Create(ctx, tenant); err != nil {
		log.Fatalf("seed tenant: %v", err)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	hash, err := hasher.Hash([]byte(demoPassword))
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	for _, su := range seedUsers {
		u := &userdomain.User{
			ID:           uuid.New().String(),
			TenantID:     tenant.ID,
			Email:        su.email,
			PasswordHash: hash,
			Role:         su.role,
			Status:       userdomain.UserStatusActive,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("seed user %s: %v", su.email, err)
		}
	}

	log.Printf("seed: created tenant %q with %d users (password %q)", demoTenantSlug, len(seedUsers), demoPassword)
}
