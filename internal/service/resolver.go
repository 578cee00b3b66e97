package service

import (
	"context"

	"github.com/rs/zerolog/log"

	apperrors "github.com/flowfolio/portfolio-server-go/internal/errors"
	"github.com/flowfolio/portfolio-server-go/internal/mappingstore"
	"github.com/flowfolio/portfolio-server-go/internal/model"
	"github.com/flowfolio/portfolio-server-go/internal/repository"
	"github.com/flowfolio/portfolio-server-go/internal/template"
)

// Resolution is the outcome of resolving one portfolio site: the registry
// record plus the template descriptor to mount, or nil when the site should
// render the coming-soon placeholder.
type Resolution struct {
	Site     *model.Site
	Template *template.Descriptor
}

// ResolverService decides which template a site renders. Resolution is
// read-only and total over registered sites: only an unknown siteName is an
// error; a missing mapping or unknown component degrades to the placeholder
// so that registering a site ahead of its UI never breaks navigation.
type ResolverService struct {
	siteRepo repository.SiteRepository
	mappings mappingstore.Store
	registry *template.Registry
}

func NewResolverService(
	siteRepo repository.SiteRepository,
	mappings mappingstore.Store,
	registry *template.Registry,
) *ResolverService {
	return &ResolverService{
		siteRepo: siteRepo,
		mappings: mappings,
		registry: registry,
	}
}

func (s *ResolverService) Resolve(ctx context.Context, siteID string) (*Resolution, error) {
	site, err := s.siteRepo.FindBySiteName(ctx, siteID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if site == nil {
		return nil, apperrors.NotFound("Site")
	}

	mapping, ok := s.mappings.FindActive(site.SiteName)
	if !ok {
		return &Resolution{Site: site}, nil
	}

	descriptor, ok := s.registry.Lookup(mapping.ComponentName)
	if !ok {
		// Soft miss: the admin mapped a component that is not registered.
		log.Debug().
			Str("siteName", site.SiteName).
			Str("componentName", mapping.ComponentName).
			Msg("mapped component not registered, falling back to placeholder")
		return &Resolution{Site: site}, nil
	}

	return &Resolution{Site: site, Template: descriptor}, nil
}
