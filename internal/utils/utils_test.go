package utils

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret", "user-1", "CUSTOMER", 15)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	if time.Until(tok.Exp) <= 14*time.Minute {
		t.Fatalf("exp = %v", tok.Exp)
	}
	id, err := ParseAccessToken("secret", tok.Token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id.UserID != "user-1" || id.Role != "CUSTOMER" {
		t.Fatalf("identity = %+v", id)
	}
}

func TestParseAccessTokenRejects(t *testing.T) {
	good, _ := NewAccessToken("secret", "user-1", "CUSTOMER", 15)
	expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1", "exp": time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte("secret"))
	noSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("secret"))

	cases := map[string]struct{ secret, raw string }{
		"wrong secret": {"other", good.Token},
		"garbage":      {"secret", "not-a-jwt"},
		"expired":      {"secret", expired},
		"no subject":   {"secret", noSubject},
	}
	for name, tc := range cases {
		if _, err := ParseAccessToken(tc.secret, tc.raw); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestRefreshTokenHashing(t *testing.T) {
	rt, err := NewRefreshToken(30)
	if err != nil {
		t.Fatalf("new refresh: %v", err)
	}
	if len(rt.Raw) != 96 {
		t.Fatalf("raw length = %d", len(rt.Raw))
	}
	if HashRefreshRaw(rt.Raw) != HashRefreshRaw(rt.Raw) || len(HashRefreshRaw(rt.Raw)) != 64 {
		t.Fatal("hash must be a stable 64-char hex digest")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyPassword(hash, "s3cret") || VerifyPassword(hash, "wrong") {
		t.Fatal("unexpected verification result")
	}
}

func TestHashPasswordClampsCost(t *testing.T) {
	hash, err := HashPassword("s3cret", 0)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyPassword(hash, "s3cret") {
		t.Fatal("clamped hash does not verify")
	}
}

func TestValidatePassword(t *testing.T) {
	cases := map[string]error{
		"short":                 ErrPasswordTooShort,
		"long enough":           nil,
		"sécurité":              nil,
		strings.Repeat("a", 73): ErrPasswordTooLong,
		strings.Repeat("é", 40): ErrPasswordTooLong,
		strings.Repeat("a", 72): nil,
	}
	for in, want := range cases {
		if got := ValidatePassword(in); got != want {
			t.Errorf("ValidatePassword(%d bytes) = %v, want %v", len(in), got, want)
		}
	}
}
