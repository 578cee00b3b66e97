package service

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"

	"github.com/flowfolio/portfolio-server-go/internal/database"
	"github.com/flowfolio/portfolio-server-go/internal/model"
	"github.com/flowfolio/portfolio-server-go/internal/repository"
	"github.com/flowfolio/portfolio-server-go/internal/sse"
)

// Mock repositories

type mockSiteRepo struct {
	mock.Mock
}

func (m *mockSiteRepo) FindBySiteName(ctx context.Context, siteName string) (*model.Site, error) {
	args := m.Called(ctx, siteName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Site), args.Error(1)
}

func (m *mockSiteRepo) FindAll(ctx context.Context, limit, offset int) ([]model.Site, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Site), args.Error(1)
}

func (m *mockSiteRepo) Create(ctx context.Context, params model.CreateSiteParams) (*model.Site, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Site), args.Error(1)
}

func (m *mockSiteRepo) Update(ctx context.Context, siteName string, params model.UpdateSiteParams) (*model.Site, error) {
	args := m.Called(ctx, siteName, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Site), args.Error(1)
}

func (m *mockSiteRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockSiteRepo) CountByStatus(ctx context.Context, status model.SiteStatus) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}

type mockWorkflowRepo struct {
	mock.Mock
}

func (m *mockWorkflowRepo) FindByID(ctx context.Context, id string) (*model.Workflow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workflow), args.Error(1)
}

func (m *mockWorkflowRepo) FindBySlug(ctx context.Context, slug string) (*model.Workflow, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workflow), args.Error(1)
}

func (m *mockWorkflowRepo) FindPublished(ctx context.Context, limit, offset int) ([]model.Workflow, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Workflow), args.Error(1)
}

func (m *mockWorkflowRepo) FindByAuthor(ctx context.Context, accountID string, limit, offset int) ([]model.Workflow, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Workflow), args.Error(1)
}

func (m *mockWorkflowRepo) Create(ctx context.Context, params model.CreateWorkflowParams) (*model.Workflow, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workflow), args.Error(1)
}

func (m *mockWorkflowRepo) Update(ctx context.Context, id string, params model.UpdateWorkflowParams) (*model.Workflow, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workflow), args.Error(1)
}

func (m *mockWorkflowRepo) Publish(ctx context.Context, id string) (*model.Workflow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workflow), args.Error(1)
}

func (m *mockWorkflowRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockAccountRepo struct {
	mock.Mock
}

func (m *mockAccountRepo) FindByID(ctx context.Context, id string) (*model.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *mockAccountRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.Account, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *mockAccountRepo) FindAll(ctx context.Context, limit, offset int) ([]model.Account, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Account), args.Error(1)
}

func (m *mockAccountRepo) Create(ctx context.Context, params model.CreateAccountParams) (*model.Account, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *mockAccountRepo) UpdateToken(ctx context.Context, id, tokenHash string) (*model.Account, error) {
	args := m.Called(ctx, id, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *mockAccountRepo) Disable(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockAccountRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockAdminSessionRepo struct {
	mock.Mock
}

func (m *mockAdminSessionRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.AdminSession, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AdminSession), args.Error(1)
}

func (m *mockAdminSessionRepo) Create(ctx context.Context, params model.CreateAdminSessionParams) (*model.AdminSession, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AdminSession), args.Error(1)
}

func (m *mockAdminSessionRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *mockAdminSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// fakeCredentialRepo is an in-memory CredentialRepository for round-trip
// tests where mock expectations would obscure the behavior under test.
type fakeCredentialRepo struct {
	rows map[string]model.UserCredential // accountID/siteName/key
}

func newFakeCredentialRepo() *fakeCredentialRepo {
	return &fakeCredentialRepo{rows: make(map[string]model.UserCredential)}
}

func (f *fakeCredentialRepo) key(accountID, siteName, credKey string) string {
	return accountID + "/" + siteName + "/" + credKey
}

func (f *fakeCredentialRepo) FindByAccountAndSite(ctx context.Context, accountID, siteName string) ([]model.UserCredential, error) {
	var out []model.UserCredential
	for _, row := range f.rows {
		if row.AccountID == accountID && row.SiteName == siteName {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeCredentialRepo) Upsert(ctx context.Context, params model.UpsertCredentialParams) (*model.UserCredential, error) {
	row := model.UserCredential{
		AccountID: params.AccountID,
		SiteName:  params.SiteName,
		Key:       params.Key,
		Value:     params.Value,
	}
	f.rows[f.key(params.AccountID, params.SiteName, params.Key)] = row
	return &row, nil
}

func (f *fakeCredentialRepo) DeleteByAccountAndSite(ctx context.Context, accountID, siteName string) error {
	for k, row := range f.rows {
		if row.AccountID == accountID && row.SiteName == siteName {
			delete(f.rows, k)
		}
	}
	return nil
}

func (f *fakeCredentialRepo) WithTx(tx *sqlx.Tx) repository.CredentialRepository {
	return f
}

// stubTxRunner runs the transaction function directly, outside any database.
type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn database.TxFunc) error {
	return fn(nil)
}

// nopPublisher swallows submission events.
type nopPublisher struct{}

func (nopPublisher) Publish(ctx context.Context, siteName string, event sse.Event) error {
	return nil
}
