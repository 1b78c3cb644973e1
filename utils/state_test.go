package utils

import (
	"errors"
	"testing"
	"time"

	"civiclens-be/models"

	"github.com/dgrijalva/jwt-go"
)

func TestStateCodecRoundTrip(t *testing.T) {
	tokens, _ := NewTokenManager(testSecret, 10*time.Minute)
	codec := NewStateCodec(tokens)

	for _, role := range []models.Role{models.RoleCitizen, models.RoleAdmin} {
		state, nonce, err := codec.Encode(role)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if nonce == "" {
			t.Fatal("expected a nonce")
		}
		got, gotNonce, err := codec.Decode(state)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if got != role || gotNonce != nonce {
			t.Errorf("expected %s/%s, got %s/%s", role, nonce, got, gotNonce)
		}
	}
}

func TestStateCodecNoncesDiffer(t *testing.T) {
	tokens, _ := NewTokenManager(testSecret, 10*time.Minute)
	codec := NewStateCodec(tokens)

	a, nonceA, _ := codec.Encode(models.RoleCitizen)
	b, nonceB, _ := codec.Encode(models.RoleCitizen)
	if a == b || nonceA == nonceB {
		t.Error("expected distinct state values and nonces")
	}
}

func TestStateCodecRejectsTampering(t *testing.T) {
	tokens, _ := NewTokenManager(testSecret, 10*time.Minute)
	codec := NewStateCodec(tokens)

	badRole, _ := tokens.Generate(jwt.MapClaims{"role": "superuser", "nonce": "n"})
	noNonce, _ := tokens.Generate(jwt.MapClaims{"role": "citizen"})

	for _, state := range []string{"", "admin", badRole, noNonce} {
		if _, _, err := codec.Decode(state); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Decode(%q): expected ErrInvalidToken, got %v", state, err)
		}
	}
}
