package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/flowfolio/portfolio-server-go/internal/audit"
	"github.com/flowfolio/portfolio-server-go/internal/middleware"
	"github.com/flowfolio/portfolio-server-go/internal/model"
	"github.com/flowfolio/portfolio-server-go/internal/service"
)

type AdminHandler struct {
	adminService      *service.AdminService
	siteService       *service.SiteService
	mappingService    *service.MappingService
	eventsHandler     *EventsHandler
	sessionMiddleware func(http.Handler) http.Handler
	loginRateLimiter  *middleware.LoginRateLimiter
	isProduction      bool
}

func NewAdminHandler(
	adminService *service.AdminService,
	siteService *service.SiteService,
	mappingService *service.MappingService,
	eventsHandler *EventsHandler,
	sessionMiddleware func(http.Handler) http.Handler,
	isProduction bool,
) *AdminHandler {
	return &AdminHandler{
		adminService:      adminService,
		siteService:       siteService,
		mappingService:    mappingService,
		eventsHandler:     eventsHandler,
		sessionMiddleware: sessionMiddleware,
		loginRateLimiter:  middleware.NewLoginRateLimiter(),
		isProduction:      isProduction,
	}
}

func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(h.loginRateLimiter.Handler).Post("/api/login", h.Login)
	r.Post("/api/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(h.sessionMiddleware)
		r.Get("/api/stats", h.Stats)

		// Sites
		r.Post("/api/sites", h.CreateSite)
		r.Patch("/api/sites/{siteName}", h.UpdateSite)

		// Component mappings
		r.Get("/api/component-mappings", h.ListMappings)
		r.Post("/api/component-mappings", h.SaveMapping)
		r.Delete("/api/component-mappings", h.DeleteMapping)

		// Accounts
		r.Get("/api/accounts", h.ListAccounts)
		r.Post("/api/accounts", h.CreateAccount)
		r.Post("/api/accounts/{id}/regenerate-token", h.RegenerateToken)
		r.Post("/api/accounts/{id}/disable", h.DisableAccount)

		// Live submission feed
		r.Get("/api/events", h.eventsHandler.ServeHTTP)
	})

	return r
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "password is required"})
		return
	}

	token, err := h.adminService.Login(r.Context(), req.Password)
	if err != nil {
		log.Error().Err(err).Msg("admin login error")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Login failed"})
		return
	}

	if token == "" {
		audit.LogFromRequest(r, audit.Event{Type: audit.EventLoginFailure})
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid password"})
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventLoginSuccess})
	middleware.SetSessionCookie(w, middleware.AdminSessionCookie, token, "/admin", h.isProduction)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.AdminSessionCookie)
	if err == nil && cookie.Value != "" {
		h.adminService.Logout(r.Context(), cookie.Value)
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventLogout})
	middleware.ClearSessionCookie(w, middleware.AdminSessionCookie, "/admin")
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.GetStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Sites

func (h *AdminHandler) CreateSite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SiteName            string   `json:"siteName"`
		Name                string   `json:"name"`
		Description         string   `json:"description"`
		SiteURL             string   `json:"siteUrl"`
		RequiredCredentials []string `json:"requiredCredentials"`
		Status              string   `json:"status"`
		WorkflowID          *string  `json:"workflowId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	site, err := h.siteService.Create(r.Context(), model.CreateSiteParams{
		SiteName:            req.SiteName,
		Name:                req.Name,
		Description:         req.Description,
		SiteURL:             req.SiteURL,
		RequiredCredentials: req.RequiredCredentials,
		Status:              model.SiteStatus(req.Status),
		WorkflowID:          req.WorkflowID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventSiteCreate, SiteName: site.SiteName})
	writeJSON(w, http.StatusCreated, site)
}

func (h *AdminHandler) UpdateSite(w http.ResponseWriter, r *http.Request) {
	siteName := chi.URLParam(r, "siteName")

	var req struct {
		Name                *string  `json:"name"`
		Description         *string  `json:"description"`
		SiteURL             *string  `json:"siteUrl"`
		RequiredCredentials []string `json:"requiredCredentials"`
		Status              *string  `json:"status"`
		WorkflowID          *string  `json:"workflowId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	params := model.UpdateSiteParams{
		Name:                req.Name,
		Description:         req.Description,
		SiteURL:             req.SiteURL,
		RequiredCredentials: req.RequiredCredentials,
		WorkflowID:          req.WorkflowID,
	}
	if req.Status != nil {
		status := model.SiteStatus(*req.Status)
		params.Status = &status
	}

	site, err := h.siteService.Update(r.Context(), siteName, params)
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventSiteUpdate, SiteName: siteName})
	writeJSON(w, http.StatusOK, site)
}

// Component mappings

func (h *AdminHandler) ListMappings(w http.ResponseWriter, r *http.Request) {
	mappings := h.mappingService.List()

	writeJSON(w, http.StatusOK, map[string]any{
		"items": mappings,
		"total": len(mappings),
	})
}

func (h *AdminHandler) SaveMapping(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SiteName      string `json:"siteName"`
		ComponentName string `json:"componentName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SiteName == "" || req.ComponentName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "siteName and componentName are required"})
		return
	}

	mapping, err := h.mappingService.Save(r.Context(), model.SaveMappingParams{
		SiteName:      req.SiteName,
		ComponentName: req.ComponentName,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventMappingSave, SiteName: req.SiteName})
	writeJSON(w, http.StatusCreated, mapping)
}

func (h *AdminHandler) DeleteMapping(w http.ResponseWriter, r *http.Request) {
	siteName := r.URL.Query().Get("siteName")
	if siteName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "siteName query parameter is required"})
		return
	}

	deleted, err := h.mappingService.Delete(siteName)
	if err != nil {
		writeError(w, err)
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Mapping not found"})
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventMappingDelete, SiteName: siteName})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Accounts

func (h *AdminHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	p := ParsePagination(r)

	accounts, err := h.adminService.ListAccounts(r.Context(), p.Limit, p.Offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": accounts,
		"total": len(accounts),
	})
}

func (h *AdminHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email              *string `json:"email"`
		Role               string  `json:"role"`
		RateLimitPerMinute int     `json:"rateLimitPerMinute"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	rateLimit := req.RateLimitPerMinute
	if rateLimit <= 0 {
		rateLimit = 60
	}

	account, token, err := h.adminService.CreateAccount(r.Context(), req.Email, model.Role(req.Role), rateLimit)
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventAccountCreate, AccountID: account.ID})

	// The plaintext token appears exactly once, in this response.
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":                 account.ID,
		"email":              account.Email,
		"role":               account.Role,
		"rateLimitPerMinute": account.RateLimitPerMin,
		"createdAt":          account.CreatedAt,
		"apiToken":           token,
	})
}

func (h *AdminHandler) RegenerateToken(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	token, err := h.adminService.RegenerateToken(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventTokenRegenerate, AccountID: id})
	writeJSON(w, http.StatusOK, map[string]string{"apiToken": token})
}

func (h *AdminHandler) DisableAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.adminService.DisableAccount(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventAccountDisable, AccountID: id})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
