// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import "time"

// Account is the persisted student record. It is the only aggregate in the system.
type Account struct {
	ID             int64     // Assigned by storage on creation; immutable afterwards.
	FullName       string    // Display name, trimmed.
	AccessUsername string    // Login name, lower-cased and unique across all accounts.
	Email          string    // Contact email, lower-cased and unique across all accounts.
	SecretHash     string    // bcrypt output. Never leaves the hasher/repository boundary.
	Note           *string   // Optional free text; nil when unset.
	CreatedAt      time.Time // Set once on insert.
}

// Claim builds the identity claim that gets embedded into session tokens.
func (a *Account) Claim() IdentityClaim {
	return IdentityClaim{
		ID:             a.ID,
		AccessUsername: a.AccessUsername,
		Email:          a.Email,
	}
}

// WithoutSecret returns a copy of the account with the secret hash cleared.
func (a *Account) WithoutSecret() *Account {
	if a == nil {
		return nil
	}

	stripped := *a
	stripped.SecretHash = ""

	return &stripped
}

// AccountChanges lists the columns a partial update touches.
// A nil pointer means "leave unchanged". ClearNote sets the note to NULL.
type AccountChanges struct {
	FullName       *string
	AccessUsername *string
	Email          *string
	SecretHash     *string
	Note           *string
	ClearNote      bool
}

// IsEmpty reports whether the change set would not modify any column.
func (c *AccountChanges) IsEmpty() bool {
	return c.FullName == nil &&
		c.AccessUsername == nil &&
		c.Email == nil &&
		c.SecretHash == nil &&
		c.Note == nil &&
		!c.ClearNote
}
