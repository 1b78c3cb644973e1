package utils

import (
	"civiclens-be/models"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

// StateCodec signs the OAuth state value so the requested role cannot be
// altered between the redirect and the callback. The nonce inside it is
// also handed to the browser that started the flow, which must present it
// again on the callback.
type StateCodec struct {
	tokens *TokenManager
}

func NewStateCodec(tokens *TokenManager) *StateCodec {
	return &StateCodec{tokens: tokens}
}

func (c *StateCodec) Encode(role models.Role) (state, nonce string, err error) {
	nonce = uuid.NewString()
	state, err = c.tokens.Generate(jwt.MapClaims{
		"role":  string(role),
		"nonce": nonce,
	})
	if err != nil {
		return "", "", err
	}
	return state, nonce, nil
}

func (c *StateCodec) Decode(state string) (models.Role, string, error) {
	claims, err := c.tokens.Parse(state)
	if err != nil {
		return "", "", err
	}
	role, _ := claims["role"].(string)
	nonce, _ := claims["nonce"].(string)
	r := models.Role(role)
	if !r.Valid() || nonce == "" {
		return "", "", ErrInvalidToken
	}
	return r, nonce, nil
}
