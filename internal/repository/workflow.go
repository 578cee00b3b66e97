package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/flowfolio/portfolio-server-go/internal/model"
)

type WorkflowRepository interface {
	FindByID(ctx context.Context, id string) (*model.Workflow, error)
	FindBySlug(ctx context.Context, slug string) (*model.Workflow, error)
	FindPublished(ctx context.Context, limit, offset int) ([]model.Workflow, error)
	FindByAuthor(ctx context.Context, accountID string, limit, offset int) ([]model.Workflow, error)
	Create(ctx context.Context, params model.CreateWorkflowParams) (*model.Workflow, error)
	Update(ctx context.Context, id string, params model.UpdateWorkflowParams) (*model.Workflow, error)
	Publish(ctx context.Context, id string) (*model.Workflow, error)
	Count(ctx context.Context) (int, error)
}

type workflowRepo struct {
	db sqlxDB
}

func NewWorkflowRepository(db *sqlx.DB) WorkflowRepository {
	return &workflowRepo{db: db}
}

func (r *workflowRepo) FindByID(ctx context.Context, id string) (*model.Workflow, error) {
	var wf model.Workflow
	err := r.db.GetContext(ctx, &wf, `SELECT * FROM workflows WHERE id = $1`, id)
	return HandleNotFound(&wf, err)
}

func (r *workflowRepo) FindBySlug(ctx context.Context, slug string) (*model.Workflow, error) {
	var wf model.Workflow
	err := r.db.GetContext(ctx, &wf, `SELECT * FROM workflows WHERE slug = $1`, slug)
	return HandleNotFound(&wf, err)
}

func (r *workflowRepo) FindPublished(ctx context.Context, limit, offset int) ([]model.Workflow, error) {
	var wfs []model.Workflow
	err := r.db.SelectContext(ctx, &wfs, `
		SELECT * FROM workflows
		WHERE status = 'published'
		ORDER BY published_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return wfs, nil
}

func (r *workflowRepo) FindByAuthor(ctx context.Context, accountID string, limit, offset int) ([]model.Workflow, error) {
	var wfs []model.Workflow
	err := r.db.SelectContext(ctx, &wfs, `
		SELECT * FROM workflows
		WHERE author_account_id = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	return wfs, nil
}

func (r *workflowRepo) Create(ctx context.Context, params model.CreateWorkflowParams) (*model.Workflow, error) {
	var wf model.Workflow
	err := r.db.GetContext(ctx, &wf, `
		INSERT INTO workflows (slug, title, description, steps, payload, status, author_account_id)
		VALUES ($1, $2, $3, $4, $5, 'draft', $6)
		RETURNING *
	`, params.Slug, params.Title, params.Description, params.Steps, params.Payload, params.AuthorAccountID)
	if err != nil {
		return nil, err
	}
	return &wf, nil
}

func (r *workflowRepo) Update(ctx context.Context, id string, params model.UpdateWorkflowParams) (*model.Workflow, error) {
	var wf model.Workflow
	err := r.db.GetContext(ctx, &wf, `
		UPDATE workflows SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			steps = COALESCE($4, steps),
			payload = COALESCE($5, payload),
			status = COALESCE($6, status),
			updated_at = $7
		WHERE id = $1
		RETURNING *
	`, id, params.Title, params.Description, params.Steps, params.Payload, params.Status, time.Now())
	return HandleNotFound(&wf, err)
}

func (r *workflowRepo) Publish(ctx context.Context, id string) (*model.Workflow, error) {
	var wf model.Workflow
	now := time.Now()
	err := r.db.GetContext(ctx, &wf, `
		UPDATE workflows SET status = 'published', published_at = $2, updated_at = $2
		WHERE id = $1
		RETURNING *
	`, id, now)
	return HandleNotFound(&wf, err)
}

func (r *workflowRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM workflows`)
	return count, err
}
