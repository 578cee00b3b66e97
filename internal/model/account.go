package model

import (
	"time"
)

// Account is an authenticated marketplace user. API access is token-based;
// only the SHA-256 hash of the token is stored.
type Account struct {
	ID              string     `db:"id" json:"id"`
	Email           *string    `db:"email" json:"email,omitempty"`
	TokenHash       *string    `db:"token_hash" json:"-"`
	Role            Role       `db:"role" json:"role"`
	RateLimitPerMin int        `db:"rate_limit_per_minute" json:"rateLimitPerMinute"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updatedAt"`
	DisabledAt      *time.Time `db:"disabled_at" json:"disabledAt,omitempty"`
}

func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

type CreateAccountParams struct {
	Email           *string
	TokenHash       string
	Role            Role
	RateLimitPerMin int
}
