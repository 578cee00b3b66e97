package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowfolio/portfolio-server-go/internal/database"
	"github.com/flowfolio/portfolio-server-go/internal/mappingstore"
	"github.com/flowfolio/portfolio-server-go/internal/middleware"
	"github.com/flowfolio/portfolio-server-go/internal/model"
	"github.com/flowfolio/portfolio-server-go/internal/repository"
	"github.com/flowfolio/portfolio-server-go/internal/service"
	"github.com/flowfolio/portfolio-server-go/internal/template"
)

// In-memory fakes: the handler tests exercise the full service stack without
// a database.

type fakeSiteRepo struct {
	sites map[string]*model.Site
}

func (f *fakeSiteRepo) FindBySiteName(ctx context.Context, siteName string) (*model.Site, error) {
	return f.sites[siteName], nil
}

func (f *fakeSiteRepo) FindAll(ctx context.Context, limit, offset int) ([]model.Site, error) {
	var out []model.Site
	for _, s := range f.sites {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeSiteRepo) Create(ctx context.Context, params model.CreateSiteParams) (*model.Site, error) {
	site := &model.Site{
		SiteName:            params.SiteName,
		Name:                params.Name,
		Description:         params.Description,
		SiteURL:             params.SiteURL,
		RequiredCredentials: params.RequiredCredentials,
		Status:              params.Status,
	}
	f.sites[params.SiteName] = site
	return site, nil
}

func (f *fakeSiteRepo) Update(ctx context.Context, siteName string, params model.UpdateSiteParams) (*model.Site, error) {
	site := f.sites[siteName]
	if site == nil {
		return nil, nil
	}
	if params.Status != nil {
		site.Status = *params.Status
	}
	return site, nil
}

func (f *fakeSiteRepo) Count(ctx context.Context) (int, error) {
	return len(f.sites), nil
}

func (f *fakeSiteRepo) CountByStatus(ctx context.Context, status model.SiteStatus) (int, error) {
	n := 0
	for _, s := range f.sites {
		if s.Status == status {
			n++
		}
	}
	return n, nil
}

type fakeCredRepo struct {
	rows map[string]model.UserCredential
}

func (f *fakeCredRepo) FindByAccountAndSite(ctx context.Context, accountID, siteName string) ([]model.UserCredential, error) {
	var out []model.UserCredential
	for _, row := range f.rows {
		if row.AccountID == accountID && row.SiteName == siteName {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeCredRepo) Upsert(ctx context.Context, params model.UpsertCredentialParams) (*model.UserCredential, error) {
	row := model.UserCredential{
		AccountID: params.AccountID,
		SiteName:  params.SiteName,
		Key:       params.Key,
		Value:     params.Value,
	}
	f.rows[params.AccountID+"/"+params.SiteName+"/"+params.Key] = row
	return &row, nil
}

func (f *fakeCredRepo) DeleteByAccountAndSite(ctx context.Context, accountID, siteName string) error {
	return nil
}

func (f *fakeCredRepo) WithTx(tx *sqlx.Tx) repository.CredentialRepository {
	return f
}

type directTxRunner struct{}

func (directTxRunner) WithTx(ctx context.Context, fn database.TxFunc) error {
	return fn(nil)
}

type portfolioFixture struct {
	handler http.Handler
	sites   *fakeSiteRepo
	creds   *service.CredentialService
}

func newPortfolioFixture(t *testing.T, webhookURL string) *portfolioFixture {
	t.Helper()

	f := &portfolioFixture{
		sites: &fakeSiteRepo{sites: map[string]*model.Site{
			"001-chatbot": {
				SiteName:            "001-chatbot",
				Name:                "AI Chatbot",
				RequiredCredentials: []string{"webhook", "endwebhook"},
				Status:              model.SiteStatusActive,
			},
			"002-video-generator": {
				SiteName: "002-video-generator",
				Name:     "Video Generator",
				Status:   model.SiteStatusComingSoon,
			},
		}},
	}

	store, err := mappingstore.Open(filepath.Join(t.TempDir(), "mappings.json"))
	require.NoError(t, err)
	_, err = store.Save(model.SaveMappingParams{SiteName: "001-chatbot", ComponentName: "ChatbotTemplate"})
	require.NoError(t, err)

	credRepo := &fakeCredRepo{rows: make(map[string]model.UserCredential)}
	f.creds = service.NewCredentialService(directTxRunner{}, credRepo, f.sites, "")
	if webhookURL != "" {
		require.NoError(t, f.creds.Save(context.Background(), "acct-1", "001-chatbot", map[string]string{
			"webhook":    webhookURL,
			"endwebhook": webhookURL,
		}))
	}

	resolver := service.NewResolverService(f.sites, store, template.Default())
	relay := service.NewRelayService(f.sites, f.creds, nil, 5*time.Second)

	r := chi.NewRouter()
	r.Use(withTestAccount)
	r.Mount("/v1/portfolio", NewPortfolioHandler(resolver, f.creds, relay).Routes())
	f.handler = r
	return f
}

// withTestAccount stands in for the auth middleware.
func withTestAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account := &model.Account{ID: "acct-1", Role: model.RoleUser}
		ctx := context.WithValue(r.Context(), middleware.AccountContextKey, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func TestPortfolioShellUnknownSite(t *testing.T) {
	f := newPortfolioFixture(t, "")

	req := httptest.NewRequest(http.MethodGet, "/v1/portfolio/no-such-site", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPortfolioShellReady(t *testing.T) {
	f := newPortfolioFixture(t, "https://hooks.example.com/wf")

	req := httptest.NewRequest(http.MethodGet, "/v1/portfolio/001-chatbot", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Site struct {
			SiteName string `json:"siteName"`
		} `json:"site"`
		Template *struct {
			ComponentName string `json:"componentName"`
			Kind          string `json:"kind"`
		} `json:"template"`
		NeedsSetup  bool              `json:"needsSetup"`
		Credentials map[string]string `json:"credentials"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "001-chatbot", resp.Site.SiteName)
	require.NotNil(t, resp.Template)
	assert.Equal(t, "ChatbotTemplate", resp.Template.ComponentName)
	assert.Equal(t, "chat", resp.Template.Kind)
	assert.False(t, resp.NeedsSetup)

	// Stored values come back masked
	for _, v := range resp.Credentials {
		assert.NotEqual(t, "https://hooks.example.com/wf", v)
		assert.True(t, strings.HasSuffix(v, "****"))
	}
}

func TestPortfolioShellNeedsSetup(t *testing.T) {
	f := newPortfolioFixture(t, "")

	req := httptest.NewRequest(http.MethodGet, "/v1/portfolio/001-chatbot", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		NeedsSetup bool `json:"needsSetup"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.NeedsSetup)
}

func TestPortfolioShellComingSoonFallback(t *testing.T) {
	f := newPortfolioFixture(t, "")

	// 002-video-generator has no mapping: template must be null, the site
	// record still present so the client can show its display name.
	req := httptest.NewRequest(http.MethodGet, "/v1/portfolio/002-video-generator", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Site struct {
			Name string `json:"name"`
		} `json:"site"`
		Template json.RawMessage `json:"template"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Video Generator", resp.Site.Name)
	assert.Equal(t, "null", string(resp.Template))
}

func TestPortfolioSubmitNeedsSetup(t *testing.T) {
	f := newPortfolioFixture(t, "")

	req := httptest.NewRequest(http.MethodPost, "/v1/portfolio/001-chatbot", strings.NewReader(`{"type":"chat","data":{"message":"hi"}}`))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success    bool `json:"success"`
		NeedsSetup bool `json:"needsSetup"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.True(t, resp.NeedsSetup)
}

func TestPortfolioSubmitDelivers(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"reply":"done"}`))
	}))
	defer upstream.Close()

	f := newPortfolioFixture(t, upstream.URL)

	req := httptest.NewRequest(http.MethodPost, "/v1/portfolio/001-chatbot", strings.NewReader(`{"type":"chat","data":{"message":"hi"}}`))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.JSONEq(t, `{"reply":"done"}`, string(resp.Data))
}

func TestPortfolioSubmitRejectsNonJSON(t *testing.T) {
	f := newPortfolioFixture(t, "")

	req := httptest.NewRequest(http.MethodPost, "/v1/portfolio/001-chatbot", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
