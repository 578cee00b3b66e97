package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/flowfolio/portfolio-server-go/internal/errors"
	"github.com/flowfolio/portfolio-server-go/internal/model"
)

func TestSiteCreateValidation(t *testing.T) {
	svc := NewSiteService(new(mockSiteRepo), "")

	tests := []struct {
		name   string
		params model.CreateSiteParams
		code   apperrors.ErrorCode
	}{
		{
			name:   "rejects uppercase slug",
			params: model.CreateSiteParams{SiteName: "Chatbot", Name: "Chatbot"},
			code:   apperrors.ErrCodeInvalidInput,
		},
		{
			name:   "rejects empty slug",
			params: model.CreateSiteParams{Name: "Chatbot"},
			code:   apperrors.ErrCodeInvalidInput,
		},
		{
			name:   "rejects missing display name",
			params: model.CreateSiteParams{SiteName: "001-chatbot"},
			code:   apperrors.ErrCodeMissingRequired,
		},
		{
			name:   "rejects unknown status",
			params: model.CreateSiteParams{SiteName: "001-chatbot", Name: "Chatbot", Status: "launched"},
			code:   apperrors.ErrCodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.params)
			require.Error(t, err)
			assert.Equal(t, tt.code, apperrors.GetCode(err))
		})
	}
}

func TestSiteCreateDefaultsToComingSoon(t *testing.T) {
	siteRepo := new(mockSiteRepo)
	siteRepo.On("FindBySiteName", mock.Anything, "001-chatbot").Return(nil, nil)
	siteRepo.On("Create", mock.Anything, mock.MatchedBy(func(p model.CreateSiteParams) bool {
		return p.Status == model.SiteStatusComingSoon
	})).Return(&model.Site{SiteName: "001-chatbot", Status: model.SiteStatusComingSoon}, nil)

	svc := NewSiteService(siteRepo, "")

	site, err := svc.Create(context.Background(), model.CreateSiteParams{
		SiteName: "001-chatbot",
		Name:     "Chatbot",
	})
	require.NoError(t, err)
	assert.Equal(t, model.SiteStatusComingSoon, site.Status)
	siteRepo.AssertExpectations(t)
}

func TestSiteCreateRejectsDuplicate(t *testing.T) {
	siteRepo := new(mockSiteRepo)
	siteRepo.On("FindBySiteName", mock.Anything, "001-chatbot").
		Return(&model.Site{SiteName: "001-chatbot"}, nil)

	svc := NewSiteService(siteRepo, "")

	_, err := svc.Create(context.Background(), model.CreateSiteParams{
		SiteName: "001-chatbot",
		Name:     "Chatbot",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeAlreadyExists, apperrors.GetCode(err))
}

func TestSiteUpdateUnknownSite(t *testing.T) {
	siteRepo := new(mockSiteRepo)
	siteRepo.On("Update", mock.Anything, "ghost", mock.Anything).Return(nil, nil)

	svc := NewSiteService(siteRepo, "")

	_, err := svc.Update(context.Background(), "ghost", model.UpdateSiteParams{})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
}

func TestSiteGet(t *testing.T) {
	siteRepo := new(mockSiteRepo)
	siteRepo.On("FindBySiteName", mock.Anything, "001-chatbot").
		Return(&model.Site{SiteName: "001-chatbot"}, nil)

	svc := NewSiteService(siteRepo, "")

	site, err := svc.Get(context.Background(), "001-chatbot")
	require.NoError(t, err)
	assert.Equal(t, "001-chatbot", site.SiteName)
}

func TestSiteURLResolvedAgainstPublicBaseURL(t *testing.T) {
	siteRepo := new(mockSiteRepo)
	siteRepo.On("FindBySiteName", mock.Anything, "001-chatbot").
		Return(&model.Site{SiteName: "001-chatbot", SiteURL: "/sites/001-chatbot"}, nil)
	siteRepo.On("FindBySiteName", mock.Anything, "002-video-generator").
		Return(&model.Site{SiteName: "002-video-generator", SiteURL: "https://video.example.com"}, nil)
	siteRepo.On("FindAll", mock.Anything, 50, 0).
		Return([]model.Site{
			{SiteName: "001-chatbot", SiteURL: "sites/001-chatbot"},
			{SiteName: "003-blank"},
		}, nil)

	svc := NewSiteService(siteRepo, "https://flowfolio.example.com/")

	t.Run("relative siteUrl becomes absolute", func(t *testing.T) {
		site, err := svc.Get(context.Background(), "001-chatbot")
		require.NoError(t, err)
		assert.Equal(t, "https://flowfolio.example.com/sites/001-chatbot", site.SiteURL)
	})

	t.Run("absolute siteUrl passes through", func(t *testing.T) {
		site, err := svc.Get(context.Background(), "002-video-generator")
		require.NoError(t, err)
		assert.Equal(t, "https://video.example.com", site.SiteURL)
	})

	t.Run("list resolves each site, empty stays empty", func(t *testing.T) {
		sites, err := svc.List(context.Background(), 50, 0)
		require.NoError(t, err)
		assert.Equal(t, "https://flowfolio.example.com/sites/001-chatbot", sites[0].SiteURL)
		assert.Empty(t, sites[1].SiteURL)
	})
}
