package security

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"time"
)

// NewTestTokenProvider returns a TokenProvider backed by a fresh ECDSA P-256
// key pair. For unit tests only. Callers must not use in production.
func NewTestTokenProvider(accessTTL, refreshTTL time.Duration) (*TokenProvider, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 24 * time.Hour
	}
	return NewTokenProvider(key, key.Public(), "test-issuer", "test-audience", accessTTL, refreshTTL), nil
}
