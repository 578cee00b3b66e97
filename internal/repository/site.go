package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/flowfolio/portfolio-server-go/internal/model"
)

type SiteRepository interface {
	FindBySiteName(ctx context.Context, siteName string) (*model.Site, error)
	FindAll(ctx context.Context, limit, offset int) ([]model.Site, error)
	Create(ctx context.Context, params model.CreateSiteParams) (*model.Site, error)
	Update(ctx context.Context, siteName string, params model.UpdateSiteParams) (*model.Site, error)
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status model.SiteStatus) (int, error)
}

type siteRepo struct {
	db sqlxDB
}

func NewSiteRepository(db *sqlx.DB) SiteRepository {
	return &siteRepo{db: db}
}

func (r *siteRepo) FindBySiteName(ctx context.Context, siteName string) (*model.Site, error) {
	var site model.Site
	err := r.db.GetContext(ctx, &site, `
		SELECT * FROM sites WHERE site_name = $1
	`, siteName)
	return HandleNotFound(&site, err)
}

func (r *siteRepo) FindAll(ctx context.Context, limit, offset int) ([]model.Site, error) {
	var sites []model.Site
	err := r.db.SelectContext(ctx, &sites, `
		SELECT * FROM sites
		ORDER BY site_name ASC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return sites, nil
}

func (r *siteRepo) Create(ctx context.Context, params model.CreateSiteParams) (*model.Site, error) {
	var site model.Site
	err := r.db.GetContext(ctx, &site, `
		INSERT INTO sites (site_name, name, description, site_url, required_credentials, status, workflow_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING *
	`, params.SiteName, params.Name, params.Description, params.SiteURL,
		pq.StringArray(params.RequiredCredentials), params.Status, params.WorkflowID)
	if err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *siteRepo) Update(ctx context.Context, siteName string, params model.UpdateSiteParams) (*model.Site, error) {
	var site model.Site
	var creds interface{}
	if params.RequiredCredentials != nil {
		creds = pq.StringArray(params.RequiredCredentials)
	}
	err := r.db.GetContext(ctx, &site, `
		UPDATE sites SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			site_url = COALESCE($4, site_url),
			required_credentials = COALESCE($5, required_credentials),
			status = COALESCE($6, status),
			workflow_id = COALESCE($7, workflow_id),
			updated_at = $8
		WHERE site_name = $1
		RETURNING *
	`, siteName, params.Name, params.Description, params.SiteURL,
		creds, params.Status, params.WorkflowID, time.Now())
	return HandleNotFound(&site, err)
}

func (r *siteRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM sites`)
	return count, err
}

func (r *siteRepo) CountByStatus(ctx context.Context, status model.SiteStatus) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM sites WHERE status = $1`, status)
	return count, err
}
