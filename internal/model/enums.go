package model

type SiteStatus string

const (
	SiteStatusActive     SiteStatus = "active"
	SiteStatusComingSoon SiteStatus = "coming_soon"
	SiteStatusBeta       SiteStatus = "beta"
	SiteStatusDisabled   SiteStatus = "disabled"
)

type TemplateKind string

const (
	TemplateKindForm       TemplateKind = "form"
	TemplateKindChat       TemplateKind = "chat"
	TemplateKindComingSoon TemplateKind = "coming_soon"
)

type WorkflowStatus string

const (
	WorkflowStatusDraft     WorkflowStatus = "draft"
	WorkflowStatusPublished WorkflowStatus = "published"
	WorkflowStatusArchived  WorkflowStatus = "archived"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type SubmissionOutcome string

const (
	SubmissionDelivered  SubmissionOutcome = "delivered"
	SubmissionRejected   SubmissionOutcome = "rejected"
	SubmissionFailed     SubmissionOutcome = "failed"
	SubmissionSuperseded SubmissionOutcome = "superseded"
)
