package model

import (
	"time"

	"github.com/lib/pq"
)

// Site is one registered portfolio demo. The siteName slug is the immutable
// identifier everything else keys on; display fields and status are mutable
// by admins only.
type Site struct {
	ID                  string         `db:"id" json:"id"`
	SiteName            string         `db:"site_name" json:"siteName"`
	Name                string         `db:"name" json:"name"`
	Description         string         `db:"description" json:"description"`
	SiteURL             string         `db:"site_url" json:"siteUrl"`
	RequiredCredentials pq.StringArray `db:"required_credentials" json:"requiredCredentials"`
	Status              SiteStatus     `db:"status" json:"status"`
	WorkflowID          *string        `db:"workflow_id" json:"workflowId,omitempty"`
	CreatedAt           time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time      `db:"updated_at" json:"updatedAt"`
}

type CreateSiteParams struct {
	SiteName            string
	Name                string
	Description         string
	SiteURL             string
	RequiredCredentials []string
	Status              SiteStatus
	WorkflowID          *string
}

type UpdateSiteParams struct {
	Name                *string
	Description         *string
	SiteURL             *string
	RequiredCredentials []string
	Status              *SiteStatus
	WorkflowID          *string
}
