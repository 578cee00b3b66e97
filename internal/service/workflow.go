package service

import (
	"context"

	apperrors "github.com/flowfolio/portfolio-server-go/internal/errors"
	"github.com/flowfolio/portfolio-server-go/internal/model"
	"github.com/flowfolio/portfolio-server-go/internal/repository"
	"github.com/flowfolio/portfolio-server-go/internal/util"
)

// WorkflowService manages the marketplace workflow catalog. Drafts are
// visible to their author only; publishing puts them in the public listing.
type WorkflowService struct {
	workflowRepo repository.WorkflowRepository
}

func NewWorkflowService(workflowRepo repository.WorkflowRepository) *WorkflowService {
	return &WorkflowService{workflowRepo: workflowRepo}
}

func (s *WorkflowService) Create(ctx context.Context, params model.CreateWorkflowParams) (*model.Workflow, error) {
	if !util.IsValidSiteName(params.Slug) {
		return nil, apperrors.InvalidInput("slug", "must be a lowercase hyphenated slug")
	}
	if params.Title == "" {
		return nil, apperrors.MissingRequired("title")
	}

	existing, err := s.workflowRepo.FindBySlug(ctx, params.Slug)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if existing != nil {
		return nil, apperrors.AlreadyExists("Workflow")
	}

	wf, err := s.workflowRepo.Create(ctx, params)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return wf, nil
}

// GetVisible returns a workflow when the caller may see it: published
// workflows are public, drafts belong to their author, admins see all.
func (s *WorkflowService) GetVisible(ctx context.Context, slug string, viewer *model.Account) (*model.Workflow, error) {
	wf, err := s.workflowRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if wf == nil {
		return nil, apperrors.NotFound("Workflow")
	}

	if wf.Status != model.WorkflowStatusPublished {
		if viewer == nil || (!viewer.IsAdmin() && viewer.ID != wf.AuthorAccountID) {
			return nil, apperrors.NotFound("Workflow")
		}
	}
	return wf, nil
}

func (s *WorkflowService) ListPublished(ctx context.Context, limit, offset int) ([]model.Workflow, error) {
	wfs, err := s.workflowRepo.FindPublished(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return wfs, nil
}

func (s *WorkflowService) ListByAuthor(ctx context.Context, accountID string, limit, offset int) ([]model.Workflow, error) {
	wfs, err := s.workflowRepo.FindByAuthor(ctx, accountID, limit, offset)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return wfs, nil
}

func (s *WorkflowService) Update(ctx context.Context, slug string, editor *model.Account, params model.UpdateWorkflowParams) (*model.Workflow, error) {
	wf, err := s.workflowRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if wf == nil {
		return nil, apperrors.NotFound("Workflow")
	}
	if !editor.IsAdmin() && editor.ID != wf.AuthorAccountID {
		return nil, apperrors.Forbidden("Only the author can edit this workflow")
	}

	updated, err := s.workflowRepo.Update(ctx, wf.ID, params)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return updated, nil
}

func (s *WorkflowService) Publish(ctx context.Context, slug string, editor *model.Account) (*model.Workflow, error) {
	wf, err := s.workflowRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if wf == nil {
		return nil, apperrors.NotFound("Workflow")
	}
	if !editor.IsAdmin() && editor.ID != wf.AuthorAccountID {
		return nil, apperrors.Forbidden("Only the author can publish this workflow")
	}

	published, err := s.workflowRepo.Publish(ctx, wf.ID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return published, nil
}
