package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"assetbase/backend/internal/audit/domain"
)

func newMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate_MarshalsMetadata(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs("evt-1", "tenant-a", "user-1", "sess-1",
			domain.ActionRefreshReuse, domain.SeverityCritical, "203.0.113.7", "go-test",
			sqlmock.AnyArg(), now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &domain.AuditLog{
		ID: "evt-1", TenantID: "tenant-a", UserID: "user-1", SessionID: "sess-1",
		Action: domain.ActionRefreshReuse, Severity: domain.SeverityCritical,
		IP: "203.0.113.7", UserAgent: "go-test",
		Metadata:  map[string]string{"consumed_at": "2026-01-01T00:00:00Z"},
		CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestListByTenant_RoundTripsMetadata(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "tenant_id", "user_id", "session_id", "action", "severity", "ip", "user_agent", "metadata", "created_at",
	}).AddRow("evt-1", "tenant-a", "user-1", "sess-1", "refresh_reuse", "critical", "203.0.113.7", "go-test",
		`{"consumed_at":"2026-01-01T00:00:00Z"}`, now)

	mock.ExpectQuery("SELECT (.+) FROM audit_logs WHERE tenant_id = \\$1").
		WithArgs("tenant-a", int32(50), int32(0)).
		WillReturnRows(rows)

	list, err := repo.ListByTenant(context.Background(), "tenant-a", 50, 0)
	if err != nil {
		t.Fatalf("ListByTenant: %v", err)
	}
	if len(list) != 1 || list[0].Severity != domain.SeverityCritical {
		t.Fatalf("list = %+v", list)
	}
	if list[0].Metadata["consumed_at"] != "2026-01-01T00:00:00Z" {
		t.Errorf("metadata = %+v", list[0].Metadata)
	}
}

func TestListByTenant(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "tenant_id", "user_id", "session_id", "action", "severity", "ip", "user_agent", "metadata", "created_at",
	}).
		AddRow("evt-2", "tenant-a", "user-1", "", "login_failure", "warning", "", "", nil, now).
		AddRow("evt-1", "tenant-a", "user-1", "sess-1", "login", "info", "", "", nil, now.Add(-time.Minute))

	mock.ExpectQuery("SELECT (.+) FROM audit_logs WHERE tenant_id = \\$1").
		WithArgs("tenant-a", int32(50), int32(0)).
		WillReturnRows(rows)

	list, err := repo.ListByTenant(context.Background(), "tenant-a", 50, 0)
	if err != nil {
		t.Fatalf("ListByTenant: %v", err)
	}
	if len(list) != 2 || list[0].ID != "evt-2" {
		t.Errorf("list = %+v", list)
	}
}

func TestListByTenant_EmptyTenantFailsClosed(t *testing.T) {
	repo, mock := newMock(t)
	list, err := repo.ListByTenant(context.Background(), "", 50, 0)
	if err != nil || list != nil {
		t.Errorf("empty tenant should match nothing, got (%+v, %v)", list, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
