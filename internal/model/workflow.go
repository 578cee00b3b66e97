package model

import (
	"encoding/json"
	"time"
)

// Workflow is a marketplace workflow template. Title, description and steps
// are the enriched metadata the web tier generates; the payload holds the
// importable workflow export.
type Workflow struct {
	ID              string          `db:"id" json:"id"`
	Slug            string          `db:"slug" json:"slug"`
	Title           string          `db:"title" json:"title"`
	Description     string          `db:"description" json:"description"`
	Steps           json.RawMessage `db:"steps" json:"steps,omitempty"`
	Payload         json.RawMessage `db:"payload" json:"payload,omitempty"`
	Status          WorkflowStatus  `db:"status" json:"status"`
	AuthorAccountID string          `db:"author_account_id" json:"authorAccountId"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updatedAt"`
	PublishedAt     *time.Time      `db:"published_at" json:"publishedAt,omitempty"`
}

type CreateWorkflowParams struct {
	Slug            string
	Title           string
	Description     string
	Steps           json.RawMessage
	Payload         json.RawMessage
	AuthorAccountID string
}

type UpdateWorkflowParams struct {
	Title       *string
	Description *string
	Steps       json.RawMessage
	Payload     json.RawMessage
	Status      *WorkflowStatus
}
