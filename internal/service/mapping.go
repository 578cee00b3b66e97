package service

import (
	"context"

	"github.com/rs/zerolog/log"

	apperrors "github.com/flowfolio/portfolio-server-go/internal/errors"
	"github.com/flowfolio/portfolio-server-go/internal/mappingstore"
	"github.com/flowfolio/portfolio-server-go/internal/model"
	"github.com/flowfolio/portfolio-server-go/internal/repository"
	"github.com/flowfolio/portfolio-server-go/internal/template"
	"github.com/flowfolio/portfolio-server-go/internal/util"
)

// MappingService manages the siteName -> component bindings. Saving a mapping
// for a component that is not registered yet is allowed: the resolver treats
// it as a soft miss, so admins can wire sites ahead of shipping templates.
type MappingService struct {
	store    mappingstore.Store
	siteRepo repository.SiteRepository
	registry *template.Registry
}

func NewMappingService(
	store mappingstore.Store,
	siteRepo repository.SiteRepository,
	registry *template.Registry,
) *MappingService {
	return &MappingService{
		store:    store,
		siteRepo: siteRepo,
		registry: registry,
	}
}

func (s *MappingService) List() []model.ComponentMapping {
	return s.store.List()
}

func (s *MappingService) Save(ctx context.Context, params model.SaveMappingParams) (*model.ComponentMapping, error) {
	if !util.IsValidComponentName(params.ComponentName) {
		return nil, apperrors.InvalidInput("componentName", "must be an identifier")
	}

	site, err := s.siteRepo.FindBySiteName(ctx, params.SiteName)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if site == nil {
		return nil, apperrors.NotFound("Site")
	}

	if _, ok := s.registry.Lookup(params.ComponentName); !ok {
		log.Warn().
			Str("siteName", params.SiteName).
			Str("componentName", params.ComponentName).
			Msg("mapping saved for unregistered component, site will render placeholder")
	}

	mapping, err := s.store.Save(params)
	if err != nil {
		// Mapping is live in memory; the document write is a convenience
		// export and its failure must not fail the admin action.
		log.Error().Err(err).Str("siteName", params.SiteName).Msg("failed to persist mapping document")
	}

	log.Info().
		Str("siteName", mapping.SiteName).
		Str("componentName", mapping.ComponentName).
		Msg("component mapping saved")

	return mapping, nil
}

func (s *MappingService) Delete(siteName string) (bool, error) {
	deleted, err := s.store.Delete(siteName)
	if err != nil {
		log.Error().Err(err).Str("siteName", siteName).Msg("failed to persist mapping document")
	}
	if deleted {
		log.Info().Str("siteName", siteName).Msg("component mapping deleted")
	}
	return deleted, nil
}
