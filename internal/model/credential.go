package model

import "time"

// UserCredential is one user's stored value for one credential key on one
// site. Values are AES-GCM encrypted at rest when an encryption key is
// configured; the JSON tag on Value is "-" so raw rows never leak into
// API responses.
type UserCredential struct {
	ID        string    `db:"id" json:"id"`
	AccountID string    `db:"account_id" json:"accountId"`
	SiteName  string    `db:"site_name" json:"siteName"`
	Key       string    `db:"credential_key" json:"key"`
	Value     string    `db:"credential_value" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type UpsertCredentialParams struct {
	AccountID string
	SiteName  string
	Key       string
	Value     string
}
