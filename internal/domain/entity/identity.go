package entity

// IdentityClaim is the minimal identity carried inside a signed token and
// attached to authenticated requests. It is never persisted on its own.
type IdentityClaim struct {
	ID             int64  `json:"id"`
	AccessUsername string `json:"access_username"`
	Email          string `json:"email"`
}
