package otel

import (
	"context"
	"testing"
	"time"

	auditdomain "assetbase/backend/internal/audit/domain"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

func TestNewProviders_EmptyEndpoint(t *testing.T) {
	ctx := context.Background()
	providers, err := NewProviders(ctx, "", "test-service", false)
	if err != nil {
		t.Fatalf("NewProviders empty endpoint: %v", err)
	}
	if providers.TracerProvider == nil || providers.MeterProvider == nil || providers.LoggerProvider == nil {
		t.Error("no-op providers should still be non-nil")
	}
	if err := providers.Shutdown(ctx); err != nil {
		t.Errorf("shutdown should be a no-op for empty endpoint, got: %v", err)
	}
}

func TestNewProviders_WhitespaceEndpoint(t *testing.T) {
	if _, err := NewProviders(context.Background(), "   ", "test-service", false); err != nil {
		t.Fatalf("NewProviders whitespace endpoint: %v", err)
	}
}

func TestNewProviders_InvalidURL(t *testing.T) {
	cases := []struct {
		name     string
		endpoint string
	}{
		{"malformed URL", "http://[invalid"},
		{"missing host", "http://"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewProviders(context.Background(), tc.endpoint, "test-service", false); err == nil {
				t.Errorf("NewProviders(%q) should fail", tc.endpoint)
			}
		})
	}
}

func TestNewAuditEmitter_NilProvider(t *testing.T) {
	e := NewAuditEmitter(nil)
	if e == nil {
		t.Fatal("nil provider should yield a no-op emitter")
	}
	if err := e.Emit(context.Background(), &auditdomain.AuditLog{Action: "login"}); err != nil {
		t.Errorf("no-op emit: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("no-op close: %v", err)
	}
}

func TestAuditEmitter_Emit(t *testing.T) {
	provider := sdklog.NewLoggerProvider()
	e := NewAuditEmitter(provider)

	entry := &auditdomain.AuditLog{
		ID:        "evt-1",
		TenantID:  "tenant-1",
		UserID:    "user-1",
		SessionID: "sess-1",
		Action:    auditdomain.ActionRefreshReuse,
		Severity:  auditdomain.SeverityCritical,
		IP:        "203.0.113.7",
		UserAgent: "go-test",
		Metadata:  map[string]string{"consumed_at": "2026-01-01T00:00:00Z"},
		CreatedAt: time.Now().UTC(),
	}
	if err := e.Emit(context.Background(), entry); err != nil {
		t.Errorf("Emit: %v", err)
	}
	if err := e.Emit(context.Background(), nil); err != nil {
		t.Errorf("Emit(nil): %v", err)
	}
}
