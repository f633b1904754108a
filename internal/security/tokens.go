package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is the single verification failure result. Bad signature,
	// tampered payload, wrong issuer/audience, and expiry all collapse into it;
	// callers must not distinguish the cause to external parties.
	ErrInvalidToken = errors.New("invalid token")
)

// AccessPayload is the verified content of an access token.
type AccessPayload struct {
	UserID    string
	TenantID  string
	SessionID string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// RefreshPayload is the verified content of a refresh token.
type RefreshPayload struct {
	UserID    string
	TenantID  string
	SessionID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// accessClaims holds JWT claims for the access token.
type accessClaims struct {
	jwt.RegisteredClaims
	TenantID  string `json:"tenant_id"`
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
}

// refreshClaims holds JWT claims for the refresh token.
type refreshClaims struct {
	jwt.RegisteredClaims
	TenantID  string `json:"tenant_id"`
	SessionID string `json:"session_id"`
}

// TokenProvider issues and verifies JWT access and refresh tokens using RS256 or ES256 (private/public key).
type TokenProvider struct {
	privateKey crypto.Signer
	publicKey  crypto.PublicKey
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenProvider returns a TokenProvider that signs with the given private key (RS256 or ES256).
// issuer and audience are set on claims and checked on verification.
func NewTokenProvider(privateKey crypto.Signer, publicKey crypto.PublicKey, issuer, audience string, accessTTL, refreshTTL time.Duration) *TokenProvider {
	return &TokenProvider{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// AccessTTL returns the configured access token lifetime.
func (p *TokenProvider) AccessTTL() time.Duration { return p.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (p *TokenProvider) RefreshTTL() time.Duration { return p.refreshTTL }

// IssueAccess issues a short-lived access JWT bound to the given session, user, tenant, and role.
// Returns the token string and its expiration time.
func (p *TokenProvider) IssueAccess(sessionID, userID, tenantID, role string) (token string, expiresAt time.Time, err error) {
	jti, err := generateJTI()
	if err != nil {
		return "", time.Time{}, err
	}
	now := time.Now().UTC()
	expiresAt = now.Add(p.accessTTL)
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TenantID:  tenantID,
		SessionID: sessionID,
		Role:      role,
	}
	token, err = p.sign(claims)
	return token, expiresAt, err
}

// IssueRefresh issues a long-lived refresh JWT bound to the given session, user, and tenant.
// The raw token is never persisted; callers store HashRefreshToken(token) on the session row.
func (p *TokenProvider) IssueRefresh(sessionID, userID, tenantID string) (token string, expiresAt time.Time, err error) {
	jti, err := generateJTI()
	if err != nil {
		return "", time.Time{}, err
	}
	now := time.Now().UTC()
	expiresAt = now.Add(p.refreshTTL)
	claims := refreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TenantID:  tenantID,
		SessionID: sessionID,
	}
	token, err = p.sign(claims)
	return token, expiresAt, err
}

func (p *TokenProvider) sign(claims jwt.Claims) (string, error) {
	var method jwt.SigningMethod
	switch p.privateKey.Public().(type) {
	case *rsa.PublicKey:
		method = jwt.SigningMethodRS256
	case *ecdsa.PublicKey:
		method = jwt.SigningMethodES256
	default:
		return "", ErrInvalidToken
	}
	t := jwt.NewWithClaims(method, claims)
	return t.SignedString(p.privateKey)
}

func (p *TokenProvider) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodRSA); ok {
		return p.publicKey, nil
	}
	if _, ok := token.Method.(*jwt.SigningMethodECDSA); ok {
		return p.publicKey, nil
	}
	return nil, ErrInvalidToken
}

// VerifyAccess parses and verifies an access token (signature, exp, iss, aud) in one step.
// Any failure returns ErrInvalidToken.
func (p *TokenProvider) VerifyAccess(tokenString string) (*AccessPayload, error) {
	token, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, p.keyFunc)
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if err := p.checkIssuerAudience(claims.Issuer, claims.Audience); err != nil {
		return nil, err
	}
	return &AccessPayload{
		UserID:    claims.Subject,
		TenantID:  claims.TenantID,
		SessionID: claims.SessionID,
		Role:      claims.Role,
		IssuedAt:  numericDateTime(claims.IssuedAt),
		ExpiresAt: numericDateTime(claims.ExpiresAt),
	}, nil
}

// VerifyRefresh parses and verifies a refresh token (signature, exp, iss, aud) in one step.
// Any failure returns ErrInvalidToken.
func (p *TokenProvider) VerifyRefresh(tokenString string) (*RefreshPayload, error) {
	token, err := jwt.ParseWithClaims(tokenString, &refreshClaims{}, p.keyFunc)
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*refreshClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if err := p.checkIssuerAudience(claims.Issuer, claims.Audience); err != nil {
		return nil, err
	}
	return &RefreshPayload{
		UserID:    claims.Subject,
		TenantID:  claims.TenantID,
		SessionID: claims.SessionID,
		IssuedAt:  numericDateTime(claims.IssuedAt),
		ExpiresAt: numericDateTime(claims.ExpiresAt),
	}, nil
}

func (p *TokenProvider) checkIssuerAudience(issuer string, audience jwt.ClaimStrings) error {
	if issuer != p.issuer {
		return ErrInvalidToken
	}
	for _, a := range audience {
		if a == p.audience {
			return nil
		}
	}
	return ErrInvalidToken
}

func numericDateTime(d *jwt.NumericDate) time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
