package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flowfolio/portfolio-server-go/internal/service"
)

// SiteHandler serves the public site registry. Read-only; mutations go
// through the admin panel.
type SiteHandler struct {
	siteService *service.SiteService
}

func NewSiteHandler(siteService *service.SiteService) *SiteHandler {
	return &SiteHandler{siteService: siteService}
}

func (h *SiteHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{siteName}", h.Get)
	return r
}

func (h *SiteHandler) List(w http.ResponseWriter, r *http.Request) {
	p := ParsePagination(r)

	sites, err := h.siteService.List(r.Context(), p.Limit, p.Offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": sites,
		"total": len(sites),
	})
}

func (h *SiteHandler) Get(w http.ResponseWriter, r *http.Request) {
	siteName := chi.URLParam(r, "siteName")

	site, err := h.siteService.Get(r.Context(), siteName)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, site)
}
