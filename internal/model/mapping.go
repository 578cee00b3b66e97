package model

import "time"

// ComponentMapping binds a site slug to a generated UI template component.
// Mappings live in a JSON document on disk, not in Postgres: the set is tiny,
// admin-written, and read on every portfolio resolution.
type ComponentMapping struct {
	SiteName      string    `json:"siteName"`
	ComponentName string    `json:"componentName"`
	IsActive      bool      `json:"isActive"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type SaveMappingParams struct {
	SiteName      string
	ComponentName string
}
