package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flowfolio/portfolio-server-go/internal/middleware"
	"github.com/flowfolio/portfolio-server-go/internal/model"
	"github.com/flowfolio/portfolio-server-go/internal/service"
)

// WorkflowHandler serves the marketplace workflow catalog for authenticated
// users. Published workflows are listed publicly; drafts only to the author.
type WorkflowHandler struct {
	workflows *service.WorkflowService
}

func NewWorkflowHandler(workflows *service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{workflows: workflows}
}

func (h *WorkflowHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListPublished)
	r.Post("/", h.Create)
	r.Get("/mine", h.ListMine)
	r.Get("/{slug}", h.Get)
	r.Patch("/{slug}", h.Update)
	r.Post("/{slug}/publish", h.Publish)
	return r
}

func (h *WorkflowHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	p := ParsePagination(r)

	wfs, err := h.workflows.ListPublished(r.Context(), p.Limit, p.Offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": wfs,
		"total": len(wfs),
	})
}

func (h *WorkflowHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	p := ParsePagination(r)
	account := middleware.GetAccount(r.Context())

	wfs, err := h.workflows.ListByAuthor(r.Context(), account.ID, p.Limit, p.Offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": wfs,
		"total": len(wfs),
	})
}

func (h *WorkflowHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	account := middleware.GetAccount(r.Context())

	wf, err := h.workflows.GetVisible(r.Context(), slug, account)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, wf)
}

func (h *WorkflowHandler) Create(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())

	var req struct {
		Slug        string          `json:"slug"`
		Title       string          `json:"title"`
		Description string          `json:"description"`
		Steps       json.RawMessage `json:"steps"`
		Payload     json.RawMessage `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	wf, err := h.workflows.Create(r.Context(), model.CreateWorkflowParams{
		Slug:            req.Slug,
		Title:           req.Title,
		Description:     req.Description,
		Steps:           req.Steps,
		Payload:         req.Payload,
		AuthorAccountID: account.ID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, wf)
}

func (h *WorkflowHandler) Update(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	account := middleware.GetAccount(r.Context())

	var req struct {
		Title       *string         `json:"title"`
		Description *string         `json:"description"`
		Steps       json.RawMessage `json:"steps"`
		Payload     json.RawMessage `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	wf, err := h.workflows.Update(r.Context(), slug, account, model.UpdateWorkflowParams{
		Title:       req.Title,
		Description: req.Description,
		Steps:       req.Steps,
		Payload:     req.Payload,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, wf)
}

func (h *WorkflowHandler) Publish(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	account := middleware.GetAccount(r.Context())

	wf, err := h.workflows.Publish(r.Context(), slug, account)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, wf)
}
