package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flowfolio/portfolio-server-go/internal/audit"
	"github.com/flowfolio/portfolio-server-go/internal/middleware"
	"github.com/flowfolio/portfolio-server-go/internal/service"
	"github.com/flowfolio/portfolio-server-go/internal/util"
)

type CredentialHandler struct {
	creds       *service.CredentialService
	siteService *service.SiteService
}

func NewCredentialHandler(creds *service.CredentialService, siteService *service.SiteService) *CredentialHandler {
	return &CredentialHandler{creds: creds, siteService: siteService}
}

func (h *CredentialHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{siteName}", h.Get)
	r.Put("/{siteName}", h.Save)
	return r
}

func (h *CredentialHandler) Get(w http.ResponseWriter, r *http.Request) {
	siteName := chi.URLParam(r, "siteName")
	account := middleware.GetAccount(r.Context())

	site, err := h.siteService.Get(r.Context(), siteName)
	if err != nil {
		writeError(w, err)
		return
	}

	values, err := h.creds.Get(r.Context(), account.ID, siteName)
	if err != nil {
		writeError(w, err)
		return
	}

	// Owners see masked previews only; plaintext never leaves the server.
	masked := make(map[string]string, len(values))
	for key, value := range values {
		masked[key] = util.MaskSecret(value)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"credentials":  masked,
		"isConfigured": service.IsConfigured(site.RequiredCredentials, values),
	})
}

func (h *CredentialHandler) Save(w http.ResponseWriter, r *http.Request) {
	siteName := chi.URLParam(r, "siteName")
	account := middleware.GetAccount(r.Context())

	var req struct {
		Credentials map[string]string `json:"credentials"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Credentials == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "credentials object is required"})
		return
	}

	if err := h.creds.Save(r.Context(), account.ID, siteName, req.Credentials); err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:      audit.EventCredentialSave,
		AccountID: account.ID,
		SiteName:  siteName,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"isConfigured": true,
	})
}
