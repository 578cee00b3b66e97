package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/flowfolio/portfolio-server-go/internal/errors"
	"github.com/flowfolio/portfolio-server-go/internal/mappingstore"
	"github.com/flowfolio/portfolio-server-go/internal/model"
	"github.com/flowfolio/portfolio-server-go/internal/template"
)

func newTestStore(t *testing.T) mappingstore.Store {
	t.Helper()
	store, err := mappingstore.Open(filepath.Join(t.TempDir(), "mappings.json"))
	require.NoError(t, err)
	return store
}

func TestResolveUnknownSite(t *testing.T) {
	siteRepo := new(mockSiteRepo)
	siteRepo.On("FindBySiteName", mock.Anything, "no-such-site").Return(nil, nil)

	svc := NewResolverService(siteRepo, newTestStore(t), template.Default())

	_, err := svc.Resolve(context.Background(), "no-such-site")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
}

func TestResolveSiteWithoutMapping(t *testing.T) {
	site := &model.Site{SiteName: "002-video-generator", Status: model.SiteStatusComingSoon}
	siteRepo := new(mockSiteRepo)
	siteRepo.On("FindBySiteName", mock.Anything, "002-video-generator").Return(site, nil)

	svc := NewResolverService(siteRepo, newTestStore(t), template.Default())

	res, err := svc.Resolve(context.Background(), "002-video-generator")
	require.NoError(t, err)
	assert.Equal(t, site, res.Site)
	assert.Nil(t, res.Template)
}

func TestResolveMappedSite(t *testing.T) {
	site := &model.Site{SiteName: "001-chatbot", Status: model.SiteStatusActive}
	siteRepo := new(mockSiteRepo)
	siteRepo.On("FindBySiteName", mock.Anything, "001-chatbot").Return(site, nil)

	store := newTestStore(t)
	_, err := store.Save(model.SaveMappingParams{SiteName: "001-chatbot", ComponentName: "ChatbotTemplate"})
	require.NoError(t, err)

	svc := NewResolverService(siteRepo, store, template.Default())

	res, err := svc.Resolve(context.Background(), "001-chatbot")
	require.NoError(t, err)
	require.NotNil(t, res.Template)
	assert.Equal(t, "ChatbotTemplate", res.Template.ComponentName)
	assert.Equal(t, model.TemplateKindChat, res.Template.Kind)
}

func TestResolveUnregisteredComponentFallsBack(t *testing.T) {
	site := &model.Site{SiteName: "003-future", Status: model.SiteStatusActive}
	siteRepo := new(mockSiteRepo)
	siteRepo.On("FindBySiteName", mock.Anything, "003-future").Return(site, nil)

	store := newTestStore(t)
	_, err := store.Save(model.SaveMappingParams{SiteName: "003-future", ComponentName: "NotBuiltYetTemplate"})
	require.NoError(t, err)

	svc := NewResolverService(siteRepo, store, template.Default())

	// Mapping points at a component that is not registered; resolution must
	// degrade to the placeholder, never error.
	res, err := svc.Resolve(context.Background(), "003-future")
	require.NoError(t, err)
	assert.Equal(t, site, res.Site)
	assert.Nil(t, res.Template)
}
