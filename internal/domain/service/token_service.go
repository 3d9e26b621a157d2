package service

import (
	"github.com/golang-jwt/jwt/v5"

	"students/internal/domain/entity"
)

// Claims defines the custom claims for the JWT tokens.
type Claims struct {
	AccountID      int64  `json:"id"`
	AccessUsername string `json:"access_username"`
	Email          string `json:"email"`
	jwt.RegisteredClaims
}

// Identity returns the identity claim carried by the token.
func (c *Claims) Identity() entity.IdentityClaim {
	return entity.IdentityClaim{
		ID:             c.AccountID,
		AccessUsername: c.AccessUsername,
		Email:          c.Email,
	}
}

// TokenService defines the interface for issuing and resolving session tokens.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// Issue signs a token carrying the identity claim.
	Issue(claim entity.IdentityClaim) (string, error)

	// Resolve verifies signature and expiry and returns the embedded claim.
	// Fails with domainerrors.ErrTokenExpired, ErrTokenMalformed or ErrTokenInvalid.
	Resolve(token string) (*entity.IdentityClaim, error)
}
