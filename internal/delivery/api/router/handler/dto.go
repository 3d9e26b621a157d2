package handler

import (
	"bytes"
	"encoding/json"
	"time"

	"students/internal/domain/entity"
)

// AccountResponse is the public view of an account. The secret hash has no field here.
type AccountResponse struct {
	ID             int64     `json:"id"`
	FullName       string    `json:"full_name"`
	AccessUsername string    `json:"access_username"`
	Email          string    `json:"email"`
	Note           *string   `json:"note"`
	CreatedAt      time.Time `json:"created_at"`
}

// LoginResponse carries the issued token and the account it belongs to.
type LoginResponse struct {
	Account *AccountResponse `json:"account"`
	Token   string           `json:"token"`
}

// UpdateAccountRequest is the body of PUT /api/students/:id.
type UpdateAccountRequest struct {
	FullName       *string        `json:"full_name"`
	AccessUsername *string        `json:"access_username"`
	Secret         *string        `json:"secret"`
	Email          *string        `json:"email"`
	Note           NullableString `json:"note"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	AccessUsername string `json:"access_username" validate:"required"`
	Secret         string `json:"secret" validate:"required"`
}

// NullableString tells an absent JSON field apart from an explicit null.
type NullableString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON is only called when the key is present, including for null.
func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Present = true
	if bytes.Equal(data, []byte("null")) {
		n.Value = nil

		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s

	return nil
}

func toAccountResponse(account *entity.Account) *AccountResponse {
	if account == nil {
		return nil
	}

	return &AccountResponse{
		ID:             account.ID,
		FullName:       account.FullName,
		AccessUsername: account.AccessUsername,
		Email:          account.Email,
		Note:           account.Note,
		CreatedAt:      account.CreatedAt,
	}
}

func toAccountResponses(accounts []*entity.Account) []*AccountResponse {
	out := make([]*AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, toAccountResponse(account))
	}

	return out
}
