package usecase

import (
	"context"

	"students/internal/domain/entity"
)

// LoginInput defines the data required for a student to log in.
type LoginInput struct {
	AccessUsername string `json:"access_username"`
	Secret         string `json:"secret"`
}

// LoginOutput returns the session token and the account it was issued for.
type LoginOutput struct {
	Account *entity.Account
	Token   string
}

// AuthUsecase defines login and token-to-identity resolution.
type AuthUsecase interface {
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)
	ResolveIdentity(ctx context.Context, token string) (*entity.IdentityClaim, error)
}
