package jwtutil

import (
	"crypto/rsa"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Generator struct {
	priv     *rsa.PrivateKey
	issuer   string
	audience string
}

func NewGenerator(priv *rsa.PrivateKey, issuer, audience string) *Generator {
	return &Generator{priv: priv, issuer: issuer, audience: audience}
}

// Generate signs a token binding userID to the session record that issued it.
// tokenType is access or refresh; validity decides exp.
func (g *Generator) Generate(userID, sessionID, tokenType string, validity time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    userID,
		SessionID: sessionID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Audience:  jwt.ClaimStrings{g.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(g.priv)
}
