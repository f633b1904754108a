// Package audit records security events to the database and, when configured,
// fans them out to Kafka for downstream shipping.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"assetbase/backend/internal/audit/domain"
	"assetbase/backend/internal/audit/producer"
	auditrepo "assetbase/backend/internal/audit/repository"
)

// SentinelTenantID is recorded for audit events that have no resolved tenant
// (e.g. a login_failure against an unknown tenant slug).
const SentinelTenantID = "_system"

// emitTimeout is the max time allowed for a single async fan-out emit.
const emitTimeout = 5 * time.Second

// ShutdownDrainDuration is how long to wait after the HTTP server stops before
// closing the producer, so in-flight async emits have time to complete.
// Must be >= emitTimeout.
const ShutdownDrainDuration = emitTimeout

// Recorder writes a single audit event. Record is best-effort: failures are
// logged and do not affect the caller, so audit problems never turn an auth
// success into a failure.
type Recorder interface {
	Record(ctx context.Context, entry *domain.AuditLog)
}

// Logger implements Recorder using the audit repository, with optional Kafka
// fan-out via the producer.
type Logger struct {
	repo auditrepo.Repository
	prod producer.Producer
	log  *zap.Logger
}

// NewLogger returns a Recorder that persists to repo and fans out to prod.
// prod may be nil; then events are only persisted. log must be non-nil.
func NewLogger(repo auditrepo.Repository, prod producer.Producer, log *zap.Logger) *Logger {
	return &Logger{repo: repo, prod: prod, log: log}
}

// Record fills in ID, timestamp, and default severity, then persists the entry
// and emits it asynchronously. Errors are logged and swallowed.
func (l *Logger) Record(ctx context.Context, entry *domain.AuditLog) {
	if l == nil || entry == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.Severity == "" {
		entry.Severity = domain.SeverityInfo
	}

	if l.repo != nil {
		if err := l.repo.Create(ctx, entry); err != nil {
			l.log.Error("audit: failed to persist event",
				zap.String("action", entry.Action),
				zap.String("tenant_id", entry.TenantID),
				zap.Error(err))
		}
	}

	l.emitAsync(entry)
}

// emitAsync fans the entry out to Kafka in a goroutine with a short timeout so
// the caller is not blocked. The goroutine uses context.Background() so request
// cancellation does not abort an in-flight emit.
func (l *Logger) emitAsync(entry *domain.AuditLog) {
	if l.prod == nil {
		return
	}
	go func() {
		emitCtx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		if err := l.prod.Emit(emitCtx, entry); err != nil {
			l.log.Error("audit: async emit failed",
				zap.String("action", entry.Action),
				zap.Error(err))
		}
	}()
}
