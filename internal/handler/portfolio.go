package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/flowfolio/portfolio-server-go/internal/middleware"
	"github.com/flowfolio/portfolio-server-go/internal/service"
	"github.com/flowfolio/portfolio-server-go/internal/util"
)

// PortfolioHandler drives the portfolio runtime shell: one GET that hands
// the client everything it needs to mount a template, and one POST that
// relays template submissions to the site's webhook.
type PortfolioHandler struct {
	resolver *service.ResolverService
	creds    *service.CredentialService
	relay    *service.RelayService
}

func NewPortfolioHandler(
	resolver *service.ResolverService,
	creds *service.CredentialService,
	relay *service.RelayService,
) *PortfolioHandler {
	return &PortfolioHandler{
		resolver: resolver,
		creds:    creds,
		relay:    relay,
	}
}

func (h *PortfolioHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{siteName}", h.Shell)
	r.Post("/{siteName}", h.Submit)
	return r
}

// Shell resolves the site and the caller's credential state in one envelope.
// needsSetup is true until every required key has a stored value; the client
// renders the setup screen instead of the template until then.
func (h *PortfolioHandler) Shell(w http.ResponseWriter, r *http.Request) {
	siteName := chi.URLParam(r, "siteName")
	account := middleware.GetAccount(r.Context())

	resolution, err := h.resolver.Resolve(r.Context(), siteName)
	if err != nil {
		writeError(w, err)
		return
	}

	// Credential lookup runs after auth resolved the account.
	values, err := h.creds.Get(r.Context(), account.ID, siteName)
	if err != nil {
		writeError(w, err)
		return
	}

	needsSetup := len(resolution.Site.RequiredCredentials) > 0 &&
		!service.IsConfigured(resolution.Site.RequiredCredentials, values)

	// Plaintext values stay server-side; the shell only learns which keys
	// are stored and a masked preview for the setup screen.
	masked := make(map[string]string, len(values))
	for key, value := range values {
		masked[key] = util.MaskSecret(value)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"site":        resolution.Site,
		"template":    resolution.Template,
		"needsSetup":  needsSetup,
		"credentials": masked,
	})
}

func (h *PortfolioHandler) Submit(w http.ResponseWriter, r *http.Request) {
	siteName := chi.URLParam(r, "siteName")
	account := middleware.GetAccount(r.Context())

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Failed to read request body"})
		return
	}
	if len(payload) == 0 || !json.Valid(payload) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Request body must be JSON"})
		return
	}

	result, err := h.relay.Submit(r.Context(), account.ID, siteName, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	if !result.Success {
		log.Debug().
			Str("siteName", siteName).
			Bool("needsSetup", result.NeedsSetup).
			Bool("superseded", result.Superseded).
			Msg("submission not delivered")
	}

	writeJSON(w, http.StatusOK, result)
}
