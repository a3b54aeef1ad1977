package auth

import (
	"testing"
	"time"

	"github.com/stockroomhq/stockroom-backend/pkg/config"
)

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "stockroom",
		ExpirationMinutes: 30,
	}
	now := time.Now().UTC()

	token, err := MintAccessToken(cfg, now, "admin@stockroom.local")
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Email != "admin@stockroom.local" {
		t.Fatalf("expected email claim, got %q", claims.Email)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatal("expected a generated jti")
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

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "stockroom",
		ExpirationMinutes: 10,
	}

	token, err := MintAccessToken(cfg, time.Now(), "admin@stockroom.local")
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	bad := cfg
	bad.Secret = "other-secret"
	if _, err := ParseAccessToken(bad, token); err == nil {
		t.Fatal("expected signature validation to fail")
	}
}

func TestParseAccessTokenWrongIssuer(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "stockroom",
		ExpirationMinutes: 10,
	}

	token, err := MintAccessToken(cfg, time.Now(), "admin@stockroom.local")
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	other := cfg
	other.Issuer = "someone-else"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected issuer validation to fail")
	}
}

func TestMintAccessTokenRequiresConfig(t *testing.T) {
	now := time.Now()
	if _, err := MintAccessToken(config.JWTConfig{Issuer: "x", ExpirationMinutes: 5}, now, "a@b"); err == nil {
		t.Fatal("expected missing secret to fail")
	}
	if _, err := MintAccessToken(config.JWTConfig{Secret: "s", ExpirationMinutes: 5}, now, "a@b"); err == nil {
		t.Fatal("expected missing issuer to fail")
	}
	if _, err := MintAccessToken(config.JWTConfig{Secret: "s", Issuer: "x", ExpirationMinutes: 5}, now, ""); err == nil {
		t.Fatal("expected missing email to fail")
	}
}
