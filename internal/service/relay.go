package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/flowfolio/portfolio-server-go/internal/errors"
	"github.com/flowfolio/portfolio-server-go/internal/model"
	"github.com/flowfolio/portfolio-server-go/internal/repository"
	"github.com/flowfolio/portfolio-server-go/internal/sse"
)

// WebhookCredentialKey is the credential key holding a site's submission
// destination. The relay resolves it server-side; templates only ever see
// the siteName.
const WebhookCredentialKey = "webhook"

const maxWebhookResponseBytes = 1 << 20 // 1MB

// EventPublisher pushes submission outcome events to the admin feed.
type EventPublisher interface {
	Publish(ctx context.Context, siteName string, event sse.Event) error
}

// SubmitResult is the normalized envelope returned for every submission.
// Exactly one of the failure flags is set on the unhappy paths; clients drop
// superseded envelopes silently.
type SubmitResult struct {
	Success       bool            `json:"success"`
	Message       string          `json:"message,omitempty"`
	Data          json.RawMessage `json:"data,omitempty"`
	NeedsSetup    bool            `json:"needsSetup,omitempty"`
	WebhookError  bool            `json:"webhookError,omitempty"`
	WebhookStatus int             `json:"webhookStatus,omitempty"`
	Superseded    bool            `json:"superseded,omitempty"`
	Error         string          `json:"error,omitempty"`
}

type inflightSubmission struct {
	cancel     context.CancelFunc
	superseded bool
}

// RelayService forwards template submissions to each site's configured
// external webhook. At most one submission per (account, site) is in flight:
// a newer submission aborts the pending one, so only one outcome is ever
// applied to client state.
type RelayService struct {
	siteRepo repository.SiteRepository
	creds    *CredentialService
	events   EventPublisher
	client   *http.Client

	mu       sync.Mutex
	inflight map[string]*inflightSubmission
}

func NewRelayService(
	siteRepo repository.SiteRepository,
	creds *CredentialService,
	events EventPublisher,
	webhookTimeout time.Duration,
) *RelayService {
	return &RelayService{
		siteRepo: siteRepo,
		creds:    creds,
		events:   events,
		client:   &http.Client{Timeout: webhookTimeout},
		inflight: make(map[string]*inflightSubmission),
	}
}

// Submit relays payload to siteName's webhook on behalf of accountID.
// An unknown site returns an error; every other outcome is expressed in the
// returned SubmitResult.
func (s *RelayService) Submit(ctx context.Context, accountID, siteName string, payload json.RawMessage) (*SubmitResult, error) {
	site, err := s.siteRepo.FindBySiteName(ctx, siteName)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if site == nil {
		return nil, apperrors.NotFound("Site")
	}

	values, err := s.creds.Get(ctx, accountID, siteName)
	if err != nil {
		return nil, err
	}

	webhookURL := strings.TrimSpace(values[WebhookCredentialKey])
	if webhookURL == "" {
		s.publishOutcome(siteName, accountID, model.SubmissionRejected, 0)
		return &SubmitResult{Success: false, NeedsSetup: true}, nil
	}

	if !isValidWebhookURL(webhookURL) {
		log.Warn().Str("siteName", siteName).Msg("stored webhook URL is invalid")
		s.publishOutcome(siteName, accountID, model.SubmissionFailed, 0)
		return &SubmitResult{Success: false, Error: "Configured webhook URL is invalid"}, nil
	}

	key := accountID + ":" + siteName
	subCtx, entry := s.begin(ctx, key)
	defer s.finish(key, entry)

	req, err := http.NewRequestWithContext(subCtx, http.MethodPost, webhookURL, bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.TransportFailed(err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		if s.wasSuperseded(entry) {
			// Aborted on purpose: neither a success nor an error surfaces.
			log.Debug().
				Str("siteName", siteName).
				Str("accountId", accountID).
				Msg("submission superseded by a newer request")
			s.publishOutcome(siteName, accountID, model.SubmissionSuperseded, 0)
			return &SubmitResult{Success: false, Superseded: true}, nil
		}

		log.Error().Err(err).
			Str("siteName", siteName).
			Dur("elapsed", elapsed).
			Msg("webhook request failed")
		s.publishOutcome(siteName, accountID, model.SubmissionFailed, 0)
		return &SubmitResult{Success: false, Error: "Failed to reach webhook"}, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxWebhookResponseBytes))
	if err != nil {
		// The abort can also land while the response body is still streaming.
		if s.wasSuperseded(entry) {
			log.Debug().
				Str("siteName", siteName).
				Str("accountId", accountID).
				Msg("submission superseded by a newer request")
			s.publishOutcome(siteName, accountID, model.SubmissionSuperseded, 0)
			return &SubmitResult{Success: false, Superseded: true}, nil
		}

		log.Error().Err(err).Str("siteName", siteName).Msg("failed to read webhook response")
		s.publishOutcome(siteName, accountID, model.SubmissionFailed, resp.StatusCode)
		return &SubmitResult{Success: false, Error: "Failed to read webhook response"}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn().
			Str("siteName", siteName).
			Int("status", resp.StatusCode).
			Dur("elapsed", elapsed).
			Msg("webhook rejected submission")
		s.publishOutcome(siteName, accountID, model.SubmissionFailed, resp.StatusCode)
		return &SubmitResult{
			Success:       false,
			WebhookError:  true,
			WebhookStatus: resp.StatusCode,
		}, nil
	}

	log.Info().
		Str("siteName", siteName).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Msg("submission relayed")
	s.publishOutcome(siteName, accountID, model.SubmissionDelivered, resp.StatusCode)

	result := &SubmitResult{Success: true, Message: "Submission delivered"}
	if json.Valid(body) && len(body) > 0 {
		result.Data = body
	}
	return result, nil
}

// begin registers a new in-flight submission under key, aborting any pending
// one for the same key first.
func (s *RelayService) begin(ctx context.Context, key string) (context.Context, *inflightSubmission) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.inflight[key]; ok {
		prev.superseded = true
		prev.cancel()
	}

	subCtx, cancel := context.WithCancel(ctx)
	entry := &inflightSubmission{cancel: cancel}
	s.inflight[key] = entry
	return subCtx, entry
}

func (s *RelayService) finish(key string, entry *inflightSubmission) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.cancel()
	if s.inflight[key] == entry {
		delete(s.inflight, key)
	}
}

func (s *RelayService) wasSuperseded(entry *inflightSubmission) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return entry.superseded
}

func (s *RelayService) publishOutcome(siteName, accountID string, outcome model.SubmissionOutcome, webhookStatus int) {
	if s.events == nil {
		return
	}

	data, err := json.Marshal(map[string]any{
		"siteName":      siteName,
		"accountId":     accountID,
		"outcome":       outcome,
		"webhookStatus": webhookStatus,
		"timestamp":     time.Now().UnixMilli(),
	})
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.events.Publish(ctx, siteName, sse.Event{Type: "submission", Data: data}); err != nil {
		log.Warn().Err(err).Str("siteName", siteName).Msg("failed to publish submission event")
	}
}

func isValidWebhookURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return false
	}
	return parsed.Hostname() != ""
}
