package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// TokenManager signs and verifies HS256 tokens with one secret.
type TokenManager struct {
	secret []byte
	expiry time.Duration
}

func NewTokenManager(secret string, expiry time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret is not set")
	}
	return &TokenManager{secret: []byte(secret), expiry: expiry}, nil
}

// Generate signs claims, adding iat and exp.
func (m *TokenManager) Generate(claims jwt.MapClaims) (string, error) {
	now := time.Now()
	signed := jwt.MapClaims{}
	for k, v := range claims {
		signed[k] = v
	}
	signed["iat"] = now.Unix()
	signed["exp"] = now.Add(m.expiry).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, signed)
	return token.SignedString(m.secret)
}

// Parse verifies the signature and expiry and returns the claims.
func (m *TokenManager) Parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateUserToken issues a bearer credential carrying only the user id.
func (m *TokenManager) GenerateUserToken(userID string) (string, error) {
	return m.Generate(jwt.MapClaims{"user_id": userID})
}

// ParseUserToken returns the user id from a bearer credential.
func (m *TokenManager) ParseUserToken(tokenString string) (string, error) {
	claims, err := m.Parse(tokenString)
	if err != nil {
		return "", err
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", ErrInvalidToken
	}
	return userID, nil
}
