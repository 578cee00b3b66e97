package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/flowfolio/portfolio-server-go/internal/errors"
	"github.com/flowfolio/portfolio-server-go/internal/model"
	"github.com/flowfolio/portfolio-server-go/internal/repository"
	"github.com/flowfolio/portfolio-server-go/internal/util"
)

const adminSessionTTL = 24 * time.Hour

// SubmissionCounter reports how many submissions were relayed today. The
// SSE broker satisfies it.
type SubmissionCounter interface {
	TodayCount(ctx context.Context) (int64, error)
}

// AdminService backs the admin panel: password login with HMAC'd session
// tokens, account management, and dashboard stats.
type AdminService struct {
	sessionRepo       repository.AdminSessionRepository
	accountRepo       repository.AccountRepository
	siteRepo          repository.SiteRepository
	workflowRepo      repository.WorkflowRepository
	mappings          *MappingService
	submissions       SubmissionCounter
	adminPasswordHash string
	sessionSecret     string
}

func NewAdminService(
	sessionRepo repository.AdminSessionRepository,
	accountRepo repository.AccountRepository,
	siteRepo repository.SiteRepository,
	workflowRepo repository.WorkflowRepository,
	mappings *MappingService,
	submissions SubmissionCounter,
	adminPasswordHash, sessionSecret string,
) *AdminService {
	return &AdminService{
		sessionRepo:       sessionRepo,
		accountRepo:       accountRepo,
		siteRepo:          siteRepo,
		workflowRepo:      workflowRepo,
		mappings:          mappings,
		submissions:       submissions,
		adminPasswordHash: adminPasswordHash,
		sessionSecret:     sessionSecret,
	}
}

// Login returns a session token on success, or "" for a wrong password.
func (s *AdminService) Login(ctx context.Context, password string) (string, error) {
	if s.adminPasswordHash == "" || !util.CheckPasswordHash(password, s.adminPasswordHash) {
		return "", nil
	}

	token, err := util.GenerateToken()
	if err != nil {
		return "", err
	}

	tokenHash := util.HmacSHA256(s.sessionSecret, token)
	_, err = s.sessionRepo.Create(ctx, model.CreateAdminSessionParams{
		TokenHash: tokenHash,
		ExpiresAt: time.Now().Add(adminSessionTTL),
	})
	if err != nil {
		return "", err
	}

	return token, nil
}

func (s *AdminService) Logout(ctx context.Context, token string) error {
	tokenHash := util.HmacSHA256(s.sessionSecret, token)
	return s.sessionRepo.DeleteByTokenHash(ctx, tokenHash)
}

// CreateAccount provisions an account and returns it with the plaintext API
// token. The token is shown exactly once; only its hash is stored.
func (s *AdminService) CreateAccount(ctx context.Context, email *string, role model.Role, rateLimitPerMin int) (*model.Account, string, error) {
	if role == "" {
		role = model.RoleUser
	}
	if role != model.RoleAdmin && role != model.RoleUser {
		return nil, "", apperrors.InvalidInput("role", "unknown role")
	}

	token, err := util.GenerateToken()
	if err != nil {
		return nil, "", apperrors.Internal("Failed to generate token")
	}

	account, err := s.accountRepo.Create(ctx, model.CreateAccountParams{
		Email:           email,
		TokenHash:       util.HashToken(token),
		Role:            role,
		RateLimitPerMin: rateLimitPerMin,
	})
	if err != nil {
		return nil, "", apperrors.Database(err)
	}

	log.Info().Str("accountId", account.ID).Str("role", string(role)).Msg("account created")
	return account, token, nil
}

// RegenerateToken rotates an account's API token and returns the new
// plaintext token once.
func (s *AdminService) RegenerateToken(ctx context.Context, accountID string) (string, error) {
	token, err := util.GenerateToken()
	if err != nil {
		return "", apperrors.Internal("Failed to generate token")
	}

	account, err := s.accountRepo.UpdateToken(ctx, accountID, util.HashToken(token))
	if err != nil {
		return "", apperrors.Database(err)
	}
	if account == nil {
		return "", apperrors.NotFound("Account")
	}

	log.Info().Str("accountId", accountID).Msg("account token regenerated")
	return token, nil
}

func (s *AdminService) ListAccounts(ctx context.Context, limit, offset int) ([]model.Account, error) {
	accounts, err := s.accountRepo.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return accounts, nil
}

func (s *AdminService) DisableAccount(ctx context.Context, accountID string) error {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return apperrors.Database(err)
	}
	if account == nil {
		return apperrors.NotFound("Account")
	}
	if err := s.accountRepo.Disable(ctx, accountID); err != nil {
		return apperrors.Database(err)
	}
	log.Info().Str("accountId", accountID).Msg("account disabled")
	return nil
}

type Stats struct {
	Sites struct {
		Total      int `json:"total"`
		Active     int `json:"active"`
		ComingSoon int `json:"comingSoon"`
		Beta       int `json:"beta"`
		Disabled   int `json:"disabled"`
	} `json:"sites"`
	ActiveMappings   int   `json:"activeMappings"`
	Accounts         int   `json:"accounts"`
	Workflows        int   `json:"workflows"`
	SubmissionsToday int64 `json:"submissionsToday"`
}

func (s *AdminService) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	total, err := s.siteRepo.Count(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	stats.Sites.Total = total

	stats.Sites.Active, _ = s.siteRepo.CountByStatus(ctx, model.SiteStatusActive)
	stats.Sites.ComingSoon, _ = s.siteRepo.CountByStatus(ctx, model.SiteStatusComingSoon)
	stats.Sites.Beta, _ = s.siteRepo.CountByStatus(ctx, model.SiteStatusBeta)
	stats.Sites.Disabled, _ = s.siteRepo.CountByStatus(ctx, model.SiteStatusDisabled)

	for _, m := range s.mappings.List() {
		if m.IsActive {
			stats.ActiveMappings++
		}
	}

	stats.Accounts, _ = s.accountRepo.Count(ctx)
	stats.Workflows, _ = s.workflowRepo.Count(ctx)

	if s.submissions != nil {
		count, err := s.submissions.TodayCount(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("failed to read submission count")
		}
		stats.SubmissionsToday = count
	}

	return stats, nil
}
