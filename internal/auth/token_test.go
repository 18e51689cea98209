package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	token, expiresAt, err := tm.GenerateToken("agent-42")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("GenerateToken() returned empty token")
	}
	if time.Until(expiresAt) <= 0 {
		t.Errorf("expiresAt = %v, want in the future", expiresAt)
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.AgentID != "agent-42" {
		t.Errorf("AgentID = %q, want %q", claims.AgentID, "agent-42")
	}
	if claims.Subject != "agent-42" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "agent-42")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", 60)
	verifier := NewTokenManager("secret-b", 60)

	token, _, err := issuer.GenerateToken("agent-42")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if _, err := verifier.ParseToken(token); err == nil {
		t.Fatal("ParseToken() with wrong secret should fail")
	}
}

func TestParseToken_Garbage(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	if _, err := tm.ParseToken("not.a.jwt"); err == nil {
		t.Fatal("ParseToken() on malformed input should fail")
	}
}

func TestNewTokenManager_DefaultTTL(t *testing.T) {
	tm := NewTokenManager("test-secret", 0)
	if tm.ttl != 60*time.Minute {
		t.Errorf("ttl = %v, want 60m default", tm.ttl)
	}
}
