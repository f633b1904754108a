package security

import "testing"

func TestHashRefreshToken_Deterministic(t *testing.T) {
	a := HashRefreshToken("some-token")
	b := HashRefreshToken("some-token")
	if a != b {
		t.Errorf("hash not deterministic: %q != %q", a, b)
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}

func TestHashRefreshToken_DifferentInputs(t *testing.T) {
	if HashRefreshToken("token-a") == HashRefreshToken("token-b") {
		t.Error("different tokens produced the same hash")
	}
}

func TestRefreshTokenHashEqual(t *testing.T) {
	stored := HashRefreshToken("the-real-token")
	if !RefreshTokenHashEqual("the-real-token", stored) {
		t.Error("matching token reported unequal")
	}
	if RefreshTokenHashEqual("another-token", stored) {
		t.Error("non-matching token reported equal")
	}
	if RefreshTokenHashEqual("", stored) {
		t.Error("empty token reported equal")
	}
}
