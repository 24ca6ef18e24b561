// Package users keeps registered accounts in memory for the lifetime of the
// process.
package users

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// User represents a registered account.
type User struct {
	ID           ulid.ULID  `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"` // Never expose in JSON
	Verified     bool       `json:"verified"`
	VerifiedAt   *time.Time `json:"verified_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (u *User) clone() *User {
	c := *u
	if u.VerifiedAt != nil {
		t := *u.VerifiedAt
		c.VerifiedAt = &t
	}
	return &c
}
