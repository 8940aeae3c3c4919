package jwtutil

import (
	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type Claims struct {
	UserID    string `json:"uid"`
	SessionID string `json:"sid"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

type JWTConfig struct {
	PrivPath string
	PubPath  string
	Issuer   string
	Audience string
}
