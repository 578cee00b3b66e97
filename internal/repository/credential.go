package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/flowfolio/portfolio-server-go/internal/model"
)

type CredentialRepository interface {
	FindByAccountAndSite(ctx context.Context, accountID, siteName string) ([]model.UserCredential, error)
	Upsert(ctx context.Context, params model.UpsertCredentialParams) (*model.UserCredential, error)
	DeleteByAccountAndSite(ctx context.Context, accountID, siteName string) error
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) CredentialRepository
}

type credentialRepo struct {
	db sqlxDB
}

func NewCredentialRepository(db *sqlx.DB) CredentialRepository {
	return &credentialRepo{db: db}
}

func (r *credentialRepo) WithTx(tx *sqlx.Tx) CredentialRepository {
	return &credentialRepo{db: tx}
}

func (r *credentialRepo) FindByAccountAndSite(ctx context.Context, accountID, siteName string) ([]model.UserCredential, error) {
	var creds []model.UserCredential
	err := r.db.SelectContext(ctx, &creds, `
		SELECT * FROM user_credentials
		WHERE account_id = $1 AND site_name = $2
		ORDER BY credential_key ASC
	`, accountID, siteName)
	if err != nil {
		return nil, err
	}
	return creds, nil
}

func (r *credentialRepo) Upsert(ctx context.Context, params model.UpsertCredentialParams) (*model.UserCredential, error) {
	var cred model.UserCredential
	err := r.db.GetContext(ctx, &cred, `
		INSERT INTO user_credentials (account_id, site_name, credential_key, credential_value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account_id, site_name, credential_key)
		DO UPDATE SET credential_value = EXCLUDED.credential_value, updated_at = $5
		RETURNING *
	`, params.AccountID, params.SiteName, params.Key, params.Value, time.Now())
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepo) DeleteByAccountAndSite(ctx context.Context, accountID, siteName string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM user_credentials WHERE account_id = $1 AND site_name = $2
	`, accountID, siteName)
	return err
}
