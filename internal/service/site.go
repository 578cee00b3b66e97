package service

import (
	"context"
	"strings"

	apperrors "github.com/flowfolio/portfolio-server-go/internal/errors"
	"github.com/flowfolio/portfolio-server-go/internal/model"
	"github.com/flowfolio/portfolio-server-go/internal/repository"
	"github.com/flowfolio/portfolio-server-go/internal/util"
)

// SiteService owns the portfolio site registry. Sites are created and
// mutated by admins only; normal operation never deletes one, disabling
// happens through the status field. publicBaseURL, when set, turns relative
// siteUrl values into absolute ones on the way out.
type SiteService struct {
	siteRepo      repository.SiteRepository
	publicBaseURL string
}

func NewSiteService(siteRepo repository.SiteRepository, publicBaseURL string) *SiteService {
	return &SiteService{
		siteRepo:      siteRepo,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

var validSiteStatuses = []string{
	string(model.SiteStatusActive),
	string(model.SiteStatusComingSoon),
	string(model.SiteStatusBeta),
	string(model.SiteStatusDisabled),
}

func (s *SiteService) Get(ctx context.Context, siteName string) (*model.Site, error) {
	site, err := s.siteRepo.FindBySiteName(ctx, siteName)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if site == nil {
		return nil, apperrors.NotFound("Site")
	}
	s.resolveSiteURL(site)
	return site, nil
}

func (s *SiteService) List(ctx context.Context, limit, offset int) ([]model.Site, error) {
	sites, err := s.siteRepo.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	for i := range sites {
		s.resolveSiteURL(&sites[i])
	}
	return sites, nil
}

// resolveSiteURL rewrites a relative siteUrl against the configured public
// base URL. Already-absolute URLs pass through untouched.
func (s *SiteService) resolveSiteURL(site *model.Site) {
	if s.publicBaseURL == "" || site.SiteURL == "" {
		return
	}
	if strings.HasPrefix(site.SiteURL, "http://") || strings.HasPrefix(site.SiteURL, "https://") {
		return
	}
	site.SiteURL = s.publicBaseURL + "/" + strings.TrimPrefix(site.SiteURL, "/")
}

func (s *SiteService) Create(ctx context.Context, params model.CreateSiteParams) (*model.Site, error) {
	if !util.IsValidSiteName(params.SiteName) {
		return nil, apperrors.InvalidInput("siteName", "must be a lowercase hyphenated slug")
	}
	if params.Name == "" {
		return nil, apperrors.MissingRequired("name")
	}
	if params.Status == "" {
		params.Status = model.SiteStatusComingSoon
	}
	if !util.IsValidEnum(string(params.Status), validSiteStatuses) {
		return nil, apperrors.InvalidInput("status", "unknown site status")
	}

	existing, err := s.siteRepo.FindBySiteName(ctx, params.SiteName)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if existing != nil {
		return nil, apperrors.AlreadyExists("Site")
	}

	site, err := s.siteRepo.Create(ctx, params)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return site, nil
}

func (s *SiteService) Update(ctx context.Context, siteName string, params model.UpdateSiteParams) (*model.Site, error) {
	if params.Status != nil && !util.IsValidEnum(string(*params.Status), validSiteStatuses) {
		return nil, apperrors.InvalidInput("status", "unknown site status")
	}

	site, err := s.siteRepo.Update(ctx, siteName, params)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if site == nil {
		return nil, apperrors.NotFound("Site")
	}
	return site, nil
}
