package auth

import (
	"testing"
	"time"

	"github.com/utroned1234/APPDEFER/config"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-access-secret",
		JWTRefreshSecret: "test-refresh-secret",
		JWTAccessExpiry:  time.Hour,
		JWTRefreshExpiry: 24 * time.Hour,
	}
}

func TestTokenPairRoundTrip(t *testing.T) {
	cfg := testConfig()

	access, refresh, err := GenerateTokenPair(cfg, "user-1", "alice", "USER")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ValidateAccessToken(cfg, access)
	if err != nil {
		t.Fatalf("validate access: %v", err)
	}
	if claims.UserID != "user-1" || claims.Username != "alice" || claims.Role != "USER" {
		t.Errorf("claims = %+v", claims)
	}

	if _, err := ValidateRefreshToken(cfg, refresh); err != nil {
		t.Errorf("validate refresh: %v", err)
	}
}

func TestTokenTypeMismatch(t *testing.T) {
	cfg := testConfig()
	access, refresh, err := GenerateTokenPair(cfg, "user-1", "alice", "USER")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := ValidateAccessToken(cfg, refresh); err == nil {
		t.Error("refresh token must not pass access validation")
	}
	if _, err := ValidateRefreshToken(cfg, access); err == nil {
		t.Error("access token must not pass refresh validation")
	}
}

func TestWrongSecretRejected(t *testing.T) {
	cfg := testConfig()
	access, _, err := GenerateTokenPair(cfg, "user-1", "alice", "USER")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	other := testConfig()
	other.JWTSecret = "a-different-secret"
	if _, err := ValidateAccessToken(other, access); err == nil {
		t.Error("token signed with another secret must be rejected")
	}
}

func TestRefreshTokensIssuesNewPair(t *testing.T) {
	cfg := testConfig()
	_, refresh, err := GenerateTokenPair(cfg, "user-1", "alice", "ADMIN")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	access, _, err := RefreshTokens(cfg, refresh)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	claims, err := ValidateAccessToken(cfg, access)
	if err != nil {
		t.Fatalf("validate refreshed access: %v", err)
	}
	if claims.Role != "ADMIN" {
		t.Errorf("role = %s, want ADMIN", claims.Role)
	}
}
