package service

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/flowfolio/portfolio-server-go/internal/database"
	apperrors "github.com/flowfolio/portfolio-server-go/internal/errors"
	"github.com/flowfolio/portfolio-server-go/internal/model"
	"github.com/flowfolio/portfolio-server-go/internal/repository"
	"github.com/flowfolio/portfolio-server-go/internal/util"
)

// TxRunner runs a function inside a database transaction. *database.DB
// satisfies it; tests substitute a stub.
type TxRunner interface {
	WithTx(ctx context.Context, fn database.TxFunc) error
}

// CredentialService stores per-user, per-site credential values. Values are
// AES-GCM encrypted at rest when an encryption key is configured, and a save
// is all-or-nothing: either every submitted key lands or none do.
type CredentialService struct {
	db            TxRunner
	credRepo      repository.CredentialRepository
	siteRepo      repository.SiteRepository
	encryptionKey string
}

func NewCredentialService(
	db TxRunner,
	credRepo repository.CredentialRepository,
	siteRepo repository.SiteRepository,
	encryptionKey string,
) *CredentialService {
	return &CredentialService{
		db:            db,
		credRepo:      credRepo,
		siteRepo:      siteRepo,
		encryptionKey: encryptionKey,
	}
}

// Get returns the caller's stored values for a site, or nil when nothing has
// been saved yet. A nil map is the expected state for a newly visited site
// and is distinct from an error.
func (s *CredentialService) Get(ctx context.Context, accountID, siteName string) (map[string]string, error) {
	rows, err := s.credRepo.FindByAccountAndSite(ctx, accountID, siteName)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	values := make(map[string]string, len(rows))
	for _, row := range rows {
		value := row.Value
		if s.encryptionKey != "" {
			decrypted, err := util.Decrypt(s.encryptionKey, value)
			if err != nil {
				log.Error().Err(err).
					Str("siteName", siteName).
					Str("key", row.Key).
					Msg("failed to decrypt stored credential")
				return nil, apperrors.Internal("Failed to read stored credentials")
			}
			value = decrypted
		}
		values[row.Key] = value
	}
	return values, nil
}

// Save validates the submitted values against the site's required keys and
// writes them in a single transaction. Missing or blank required keys abort
// the save with the offending keys named; no partial write occurs.
func (s *CredentialService) Save(ctx context.Context, accountID, siteName string, values map[string]string) error {
	site, err := s.siteRepo.FindBySiteName(ctx, siteName)
	if err != nil {
		return apperrors.Database(err)
	}
	if site == nil {
		return apperrors.NotFound("Site")
	}

	var missing []string
	for _, key := range site.RequiredCredentials {
		if strings.TrimSpace(values[key]) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return apperrors.MissingCredentials(missing)
	}

	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		repo := s.credRepo.WithTx(tx)
		for key, value := range values {
			if strings.TrimSpace(value) == "" {
				continue
			}
			stored := value
			if s.encryptionKey != "" {
				encrypted, err := util.Encrypt(s.encryptionKey, value)
				if err != nil {
					return err
				}
				stored = encrypted
			}
			if _, err := repo.Upsert(ctx, model.UpsertCredentialParams{
				AccountID: accountID,
				SiteName:  siteName,
				Key:       key,
				Value:     stored,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.Database(err)
	}

	log.Info().
		Str("accountId", accountID).
		Str("siteName", siteName).
		Int("keys", len(values)).
		Msg("credentials saved")

	return nil
}

// IsConfigured reports whether every required key has a non-empty trimmed
// value in the stored set.
func IsConfigured(requiredCredentials []string, values map[string]string) bool {
	for _, key := range requiredCredentials {
		if strings.TrimSpace(values[key]) == "" {
			return false
		}
	}
	return true
}
