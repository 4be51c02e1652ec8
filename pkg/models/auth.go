package models

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTClaims carries API-client identity in signed tokens.
type JWTClaims struct {
	ClientID uuid.UUID `json:"client_id"`
	APIKey   string    `json:"api_key"`
	Tier     string    `json:"tier"`
	jwt.RegisteredClaims
}
