package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
)

const testSecret = "this-is-a-test-secret-with-32-bytes!"

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	if _, err := NewTokenManager("", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestUserTokenRoundTrip(t *testing.T) {
	m, err := NewTokenManager(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager failed: %v", err)
	}

	token, err := m.GenerateUserToken("64b7f0c2a1b2c3d4e5f60718")
	if err != nil {
		t.Fatalf("GenerateUserToken failed: %v", err)
	}

	userID, err := m.ParseUserToken(token)
	if err != nil {
		t.Fatalf("ParseUserToken failed: %v", err)
	}
	if userID != "64b7f0c2a1b2c3d4e5f60718" {
		t.Errorf("expected user id to round-trip, got %s", userID)
	}
}

func TestParseRejectsBadTokens(t *testing.T) {
	m, _ := NewTokenManager(testSecret, time.Hour)
	other, _ := NewTokenManager("a-different-secret-entirely-0000", time.Hour)
	expired, _ := NewTokenManager(testSecret, -time.Minute)

	foreign, _ := other.GenerateUserToken("abc")
	stale, _ := expired.GenerateUserToken("abc")
	noUser, _ := m.Generate(jwt.MapClaims{"role": "admin"})

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", foreign},
		{"expired", stale},
		{"missing user id", noUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.ParseUserToken(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestParseRejectsNoneAlgorithm(t *testing.T) {
	m, _ := NewTokenManager(testSecret, time.Hour)

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"user_id": "abc",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to build unsigned token: %v", err)
	}

	if _, err := m.ParseUserToken(unsigned); err == nil {
		t.Error("expected unsigned token to be rejected")
	}
}
