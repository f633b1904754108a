package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"assetbase/backend/internal/audit"
	auditdomain "assetbase/backend/internal/audit/domain"
	"assetbase/backend/internal/security"
	sessiondomain "assetbase/backend/internal/session/domain"
	tenantdomain "assetbase/backend/internal/tenant/domain"
	userdomain "assetbase/backend/internal/user/domain"
)

// Sentinel errors for the auth service; the handler collapses all of them to a
// generic unauthorized response so callers cannot probe which check failed.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrRefreshTokenReuse   = errors.New("refresh token reuse detected; all sessions revoked")
)

// ClientInfo carries request metadata recorded in sessions and audit events.
type ClientInfo struct {
	UserAgent string
	IP        string
}

// AuthResult holds the outcome of Login or Refresh: a fresh token pair and the
// identity it was minted for.
type AuthResult struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	SessionID        string
	UserID           string
	TenantID         string
	Email            string
	Role             userdomain.Role
}

// TenantRepo is the minimal tenant repository needed by the auth service.
type TenantRepo interface {
	GetBySlug(ctx context.Context, slug string) (*tenantdomain.Tenant, error)
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByTenantAndEmail(ctx context.Context, tenantID, email string) (*userdomain.User, error)
	GetByTenantAndID(ctx context.Context, tenantID, id string) (*userdomain.User, error)
}

// SessionRepo is the minimal session repository needed by the auth service.
type SessionRepo interface {
	Create(ctx context.Context, s *sessiondomain.Session) error
	GetByIDAndTenant(ctx context.Context, id, tenantID string) (*sessiondomain.Session, error)
	ListByUserAndTenant(ctx context.Context, userID, tenantID string) ([]*sessiondomain.Session, error)
	ConsumeActive(ctx context.Context, id, tenantID, refreshTokenHash string, now time.Time) (bool, error)
	DeleteByIDAndTenant(ctx context.Context, id, tenantID string) error
	DeleteAllByUserAndTenant(ctx context.Context, userID, tenantID string) error
}

// AuthService implements login, single-use refresh rotation, and logout.
type AuthService struct {
	tenantRepo  TenantRepo
	userRepo    UserRepo
	sessionRepo SessionRepo
	hasher      *security.Hasher
	tokens      *security.TokenProvider
	auditor     audit.Recorder
}

// NewAuthService returns an AuthService with the given dependencies.
// auditor may be nil; then no audit events are recorded.
func NewAuthService(
	tenantRepo TenantRepo,
	userRepo UserRepo,
	sessionRepo SessionRepo,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	auditor audit.Recorder,
) *AuthService {
	return &AuthService{
		tenantRepo:  tenantRepo,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
		tokens:      tokens,
		auditor:     auditor,
	}
}

// Login authenticates email/password within the tenant named by slug, creates
// an active session, and returns a fresh token pair. Every failure mode
// returns ErrInvalidCredentials so a caller cannot tell an unknown tenant from
// an unknown email from a wrong password.
func (s *AuthService) Login(ctx context.Context, tenantSlug, email, password string, client ClientInfo) (*AuthResult, error) {
	tenantSlug = strings.TrimSpace(strings.ToLower(tenantSlug))
	email = strings.TrimSpace(strings.ToLower(email))
	if tenantSlug == "" || email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	tenant, err := s.tenantRepo.GetBySlug(ctx, tenantSlug)
	if err != nil {
		return nil, err
	}
	if tenant == nil || !tenant.Active() {
		s.recordLoginFailure(ctx, audit.SentinelTenantID, email, "unknown or inactive tenant", client)
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByTenantAndEmail(ctx, tenant.ID, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Active() {
		s.recordLoginFailure(ctx, tenant.ID, email, "unknown or inactive user", client)
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		s.recordLoginFailure(ctx, tenant.ID, email, "password mismatch", client)
		return nil, ErrInvalidCredentials
	}

	result, err := s.mintSession(ctx, user, client)
	if err != nil {
		return nil, err
	}

	s.record(ctx, &auditdomain.AuditLog{
		TenantID:  tenant.ID,
		UserID:    user.ID,
		SessionID: result.SessionID,
		Action:    auditdomain.ActionLogin,
		IP:        client.IP,
		UserAgent: client.UserAgent,
	})
	return result, nil
}

// Refresh rotates the refresh token: exactly one of N concurrent calls with
// the same token consumes the session row and receives a new pair bound to a
// brand-new session. A token presented after consumption is reuse; every
// session of that user in that tenant is revoked and a critical audit event
// is recorded. All failures surface as ErrInvalidRefreshToken or
// ErrRefreshTokenReuse, which the handler presents identically.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, client ClientInfo) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}
	payload, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	now := time.Now().UTC()
	tokenHash := security.HashRefreshToken(refreshToken)
	consumed, err := s.sessionRepo.ConsumeActive(ctx, payload.SessionID, payload.TenantID, tokenHash, now)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, s.classifyConsumeMiss(ctx, payload, refreshToken, now, client)
	}

	user, err := s.userRepo.GetByTenantAndID(ctx, payload.TenantID, payload.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Active() {
		return nil, ErrInvalidRefreshToken
	}

	result, err := s.mintSession(ctx, user, client)
	if err != nil {
		return nil, err
	}

	s.record(ctx, &auditdomain.AuditLog{
		TenantID:  payload.TenantID,
		UserID:    user.ID,
		SessionID: result.SessionID,
		Action:    auditdomain.ActionRefresh,
		IP:        client.IP,
		UserAgent: client.UserAgent,
		Metadata:  map[string]string{"rotated_from": payload.SessionID},
	})
	return result, nil
}

// classifyConsumeMiss refetches the session after a zero-row conditional
// update to distinguish reuse (tombstoned row, same token) from an expired or
// missing session. Only reuse has a side effect: cascade revoke.
func (s *AuthService) classifyConsumeMiss(ctx context.Context, payload *security.RefreshPayload, refreshToken string, now time.Time, client ClientInfo) error {
	sess, err := s.sessionRepo.GetByIDAndTenant(ctx, payload.SessionID, payload.TenantID)
	if err != nil {
		return err
	}
	if sess == nil {
		return ErrInvalidRefreshToken
	}
	if sess.Status == sessiondomain.StatusTombstoned && security.RefreshTokenHashEqual(refreshToken, sess.RefreshTokenHash) {
		if err := s.sessionRepo.DeleteAllByUserAndTenant(ctx, sess.UserID, payload.TenantID); err != nil {
			return err
		}
		s.record(ctx, &auditdomain.AuditLog{
			TenantID:  payload.TenantID,
			UserID:    sess.UserID,
			SessionID: sess.ID,
			Action:    auditdomain.ActionRefreshReuse,
			Severity:  auditdomain.SeverityCritical,
			IP:        client.IP,
			UserAgent: client.UserAgent,
			Metadata:  map[string]string{"consumed_at": consumedAtString(sess)},
		})
		return ErrRefreshTokenReuse
	}
	if sess.Expired(now) {
		if err := s.sessionRepo.DeleteByIDAndTenant(ctx, sess.ID, payload.TenantID); err != nil {
			return err
		}
		return ErrInvalidRefreshToken
	}
	// Unexpired, but the stored hash did not match the presented token. A
	// forged secret against a live session id is not reuse, just a bad token.
	return ErrInvalidRefreshToken
}

// Logout deletes the caller's session row. Deleting an already-gone session is
// a no-op, so repeated logouts are harmless.
func (s *AuthService) Logout(ctx context.Context, sessionID, tenantID, userID string, client ClientInfo) error {
	if err := s.sessionRepo.DeleteByIDAndTenant(ctx, sessionID, tenantID); err != nil {
		return err
	}
	s.record(ctx, &auditdomain.AuditLog{
		TenantID:  tenantID,
		UserID:    userID,
		SessionID: sessionID,
		Action:    auditdomain.ActionLogout,
		IP:        client.IP,
		UserAgent: client.UserAgent,
	})
	return nil
}

// LogoutAll deletes every session of the user in the tenant, active and
// tombstoned alike.
func (s *AuthService) LogoutAll(ctx context.Context, userID, tenantID string, client ClientInfo) error {
	if err := s.sessionRepo.DeleteAllByUserAndTenant(ctx, userID, tenantID); err != nil {
		return err
	}
	s.record(ctx, &auditdomain.AuditLog{
		TenantID:  tenantID,
		UserID:    userID,
		Action:    auditdomain.ActionLogoutAll,
		IP:        client.IP,
		UserAgent: client.UserAgent,
	})
	return nil
}

// Sessions lists the user's sessions in the tenant, newest first.
func (s *AuthService) Sessions(ctx context.Context, userID, tenantID string) ([]*sessiondomain.Session, error) {
	return s.sessionRepo.ListByUserAndTenant(ctx, userID, tenantID)
}

// mintSession creates a brand-new active session for user and issues the token
// pair bound to it. Used by both login and a winning refresh; rotation never
// reuses a session ID.
func (s *AuthService) mintSession(ctx context.Context, user *userdomain.User, client ClientInfo) (*AuthResult, error) {
	sessionID := uuid.New().String()

	refreshToken, refreshExp, err := s.tokens.IssueRefresh(sessionID, user.ID, user.TenantID)
	if err != nil {
		return nil, err
	}
	accessToken, accessExp, err := s.tokens.IssueAccess(sessionID, user.ID, user.TenantID, string(user.Role))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sess := &sessiondomain.Session{
		ID:               sessionID,
		UserID:           user.ID,
		TenantID:         user.TenantID,
		Status:           sessiondomain.StatusActive,
		RefreshTokenHash: security.HashRefreshToken(refreshToken),
		UserAgent:        client.UserAgent,
		IPAddress:        client.IP,
		ExpiresAt:        refreshExp,
		CreatedAt:        now,
	}
	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, err
	}

	return &AuthResult{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
		SessionID:        sessionID,
		UserID:           user.ID,
		TenantID:         user.TenantID,
		Email:            user.Email,
		Role:             user.Role,
	}, nil
}

func (s *AuthService) record(ctx context.Context, entry *auditdomain.AuditLog) {
	if s.auditor == nil {
		return
	}
	s.auditor.Record(ctx, entry)
}

func (s *AuthService) recordLoginFailure(ctx context.Context, tenantID, email, reason string, client ClientInfo) {
	s.record(ctx, &auditdomain.AuditLog{
		TenantID:  tenantID,
		Action:    auditdomain.ActionLoginFailure,
		Severity:  auditdomain.SeverityWarning,
		IP:        client.IP,
		UserAgent: client.UserAgent,
		Metadata:  map[string]string{"email": email, "reason": reason},
	})
}

func consumedAtString(sess *sessiondomain.Session) string {
	if sess.ConsumedAt == nil {
		return ""
	}
	return sess.ConsumedAt.UTC().Format(time.RFC3339Nano)
}
