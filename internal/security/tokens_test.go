package security

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestIssueAndVerifyAccess(t *testing.T) {
	p, err := NewTestTokenProvider(15*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	token, exp, err := p.IssueAccess("sess-1", "user-1", "tenant-1", "admin")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if token == "" {
		t.Fatal("IssueAccess returned empty token")
	}
	if !exp.After(time.Now()) {
		t.Errorf("expiresAt %v should be in the future", exp)
	}

	payload, err := p.VerifyAccess(token)
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if payload.UserID != "user-1" || payload.TenantID != "tenant-1" || payload.SessionID != "sess-1" || payload.Role != "admin" {
		t.Errorf("payload = %+v, want user-1/tenant-1/sess-1/admin", payload)
	}
}

func TestIssueAndVerifyRefresh(t *testing.T) {
	p, err := NewTestTokenProvider(15*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	token, _, err := p.IssueRefresh("sess-2", "user-2", "tenant-2")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	payload, err := p.VerifyRefresh(token)
	if err != nil {
		t.Fatalf("VerifyRefresh: %v", err)
	}
	if payload.UserID != "user-2" || payload.TenantID != "tenant-2" || payload.SessionID != "sess-2" {
		t.Errorf("payload = %+v, want user-2/tenant-2/sess-2", payload)
	}
}

func TestVerify_TamperedToken(t *testing.T) {
	p, err := NewTestTokenProvider(15*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	token, _, err := p.IssueAccess("sess-1", "user-1", "tenant-1", "member")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("token has %d parts, want 3", len(parts))
	}
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, err := p.VerifyAccess(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("VerifyAccess(tampered) = %v, want ErrInvalidToken", err)
	}
}

func TestVerify_ExpiredToken(t *testing.T) {
	p, err := NewTestTokenProvider(time.Nanosecond, time.Nanosecond)
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	token, _, err := p.IssueAccess("sess-1", "user-1", "tenant-1", "member")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := p.VerifyAccess(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("VerifyAccess(expired) = %v, want ErrInvalidToken", err)
	}
}

func TestVerify_WrongKey(t *testing.T) {
	p1, err := NewTestTokenProvider(15*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	p2, err := NewTestTokenProvider(15*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	token, _, err := p1.IssueRefresh("sess-1", "user-1", "tenant-1")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if _, err := p2.VerifyRefresh(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("VerifyRefresh(wrong key) = %v, want ErrInvalidToken", err)
	}
}

func TestVerify_GarbageInput(t *testing.T) {
	p, err := NewTestTokenProvider(15*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := p.VerifyAccess(raw); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("VerifyAccess(%q) = %v, want ErrInvalidToken", raw, err)
		}
		if _, err := p.VerifyRefresh(raw); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("VerifyRefresh(%q) = %v, want ErrInvalidToken", raw, err)
		}
	}
}
