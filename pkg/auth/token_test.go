package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lsalmeida/ecoeletronico-backend/pkg/config"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/enums"
)

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "ecoeletronico",
		ExpirationMinutes: 30,
	}
	now := time.Now().UTC()
	accountID := uuid.New()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{
		AccountID: accountID,
		Role:      enums.RoleStudent,
		JTI:       "session-1",
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.AccountID != accountID {
		t.Fatalf("expected account_id %s, got %s", accountID, claims.AccountID)
	}
	if claims.Role != enums.RoleStudent {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.ID != "session-1" {
		t.Fatalf("expected jti session-1, got %s", claims.ID)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}

	exp := now.Add(time.Duration(cfg.ExpirationMinutes) * time.Minute)
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v (diff %v)", exp.UTC(), claims.ExpiresAt.UTC(), diff)
	}
}

func TestMintAccessTokenGeneratesJTIWhenMissing(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "ecoeletronico", ExpirationMinutes: 5}

	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		AccountID: uuid.New(),
		Role:      enums.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.ID == "" {
		t.Fatal("expected generated jti, got empty")
	}
}

func TestMintAccessTokenRejectsInvalidRole(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "ecoeletronico", ExpirationMinutes: 5}

	_, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		AccountID: uuid.New(),
		Role:      enums.Role("professor"),
	})
	if err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "ecoeletronico", ExpirationMinutes: 5}

	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		AccountID: uuid.New(),
		Role:      enums.RoleStudent,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	other := cfg
	other.Secret = "different"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected signature validation to fail")
	}
}

func TestParseAccessTokenAllowExpired(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "ecoeletronico", ExpirationMinutes: 5}

	issuedAt := time.Now().Add(-2 * time.Hour)
	token, err := MintAccessToken(cfg, issuedAt, AccessTokenPayload{
		AccountID: uuid.New(),
		Role:      enums.RoleStudent,
		JTI:       "stale-session",
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected expired token to fail strict parse")
	}

	claims, err := ParseAccessTokenAllowExpired(cfg, token)
	if err != nil {
		t.Fatalf("lenient parse: %v", err)
	}
	if claims.ID != "stale-session" {
		t.Fatalf("expected jti stale-session, got %s", claims.ID)
	}
}
