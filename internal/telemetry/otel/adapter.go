package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"assetbase/backend/internal/audit/domain"
	"assetbase/backend/internal/audit/producer"
)

// NewAuditEmitter returns a producer that sends audit events as OTel log
// records via the given LoggerProvider. If provider is nil, returns a no-op
// emitter.
func NewAuditEmitter(provider *sdklog.LoggerProvider) producer.Producer {
	if provider == nil {
		return noopEmitter{}
	}
	return &otelEmitter{logger: provider.Logger("assetbase.audit")}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *domain.AuditLog) error { return nil }
func (noopEmitter) Close() error                                 { return nil }

type otelEmitter struct {
	logger otellog.Logger
}

// Emit converts the audit entry to an OTel log record and emits it.
func (e *otelEmitter) Emit(ctx context.Context, entry *domain.AuditLog) error {
	if entry == nil {
		return nil
	}
	rec := otellog.Record{}
	if !entry.CreatedAt.IsZero() {
		rec.SetTimestamp(entry.CreatedAt)
	} else {
		rec.SetTimestamp(time.Now().UTC())
	}
	rec.SetBody(otellog.StringValue(entry.Action))
	rec.SetSeverity(severityToOTel(entry.Severity))
	if entry.TenantID != "" {
		rec.AddAttributes(otellog.String("tenant_id", entry.TenantID))
	}
	if entry.UserID != "" {
		rec.AddAttributes(otellog.String("user_id", entry.UserID))
	}
	if entry.SessionID != "" {
		rec.AddAttributes(otellog.String("session_id", entry.SessionID))
	}
	if entry.IP != "" {
		rec.AddAttributes(otellog.String("ip", entry.IP))
	}
	if entry.UserAgent != "" {
		rec.AddAttributes(otellog.String("user_agent", entry.UserAgent))
	}
	for k, v := range entry.Metadata {
		rec.AddAttributes(otellog.String(k, v))
	}
	e.logger.Emit(ctx, rec)
	return nil
}

func (e *otelEmitter) Close() error { return nil }

func severityToOTel(s domain.Severity) otellog.Severity {
	switch s {
	case domain.SeverityCritical:
		return otellog.SeverityError
	case domain.SeverityWarning:
		return otellog.SeverityWarn
	default:
		return otellog.SeverityInfo
	}
}
