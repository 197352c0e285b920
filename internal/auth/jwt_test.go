package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cruzverde/attendance/internal/account"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestIssueAndParse(t *testing.T) {
	m := NewTokenManager(testKey, "cruz-verde", time.Hour)
	token, exp, err := m.Issue("acc-1", account.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(exp) <= 59*time.Minute {
		t.Fatalf("exp = %s", exp)
	}
	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.AccountID() != "acc-1" || claims.Role != "admin" || claims.ID == "" {
		t.Fatalf("claims = %+v", claims)
	}

	other, _, _ := m.Issue("acc-1", account.RoleAdmin)
	otherClaims, _ := m.Parse(other)
	if otherClaims.ID == claims.ID {
		t.Fatal("token ids must be unique")
	}
}

func TestParse_Rejects(t *testing.T) {
	m := NewTokenManager(testKey, "cruz-verde", time.Hour)
	valid, _, err := m.Issue("acc-1", account.RoleVolunteer)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	expired := NewTokenManager(testKey, "cruz-verde", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, _ := expired.Issue("acc-1", account.RoleVolunteer)

	foreign, _, _ := NewTokenManager(testKey, "someone-else", time.Hour).Issue("acc-1", account.RoleVolunteer)

	unsigned, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "acc-1",
			Issuer:    "cruz-verde",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := map[string]string{
		"garbage":      "not-a-token",
		"wrong key":    mustIssue(t, NewTokenManager("another-signing-key-0000", "cruz-verde", time.Hour)),
		"expired":      stale,
		"wrong issuer": foreign,
		"alg none":     unsigned,
		"tampered":     valid + "x",
	}
	for name, token := range tests {
		if _, err := m.Parse(token); err == nil {
			t.Errorf("%s: Parse accepted token", name)
		}
	}
}

func mustIssue(t *testing.T, m *TokenManager) string {
	t.Helper()
	token, _, err := m.Issue("acc-1", account.RoleVolunteer)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return token
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(4)
	hash, err := h.Hash("secreto1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "secreto1" {
		t.Fatal("hash stores cleartext")
	}
	if !h.Verify("secreto1", hash) {
		t.Fatal("Verify rejected the right password")
	}
	if h.Verify("secreto2", hash) {
		t.Fatal("Verify accepted the wrong password")
	}
}
