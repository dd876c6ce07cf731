package identity_test

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	identity "github.com/lpuqa/go-identity"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockRepositoryManager implements identity.RepositoryManager
type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepositoryManager) MustValidate() {
	m.Called()
}

// RunInTx records the call, then drives the transaction body with a zero
// tx value so the body's error propagates like in the real manager.
func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	args := m.Called(ctx, opts, f)
	if err := args.Error(0); err != nil {
		return err
	}

	var tx bun.Tx
	return f(ctx, tx)
}

func (m *MockRepositoryManager) Accounts() identity.Accounts {
	args := m.Called()
	return args.Get(0).(identity.Accounts)
}

// MockAccounts implements identity.Accounts
type MockAccounts struct {
	mock.Mock
}

func (m *MockAccounts) FindByEmail(ctx context.Context, email string) (*identity.Account, error) {
	args := m.Called(ctx, email)
	return accountArg(args.Get(0)), args.Error(1)
}

func (m *MockAccounts) FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*identity.Account, error) {
	args := m.Called(ctx, tx, email)
	return accountArg(args.Get(0)), args.Error(1)
}

func (m *MockAccounts) Create(ctx context.Context, record *identity.Account) (*identity.Account, error) {
	args := m.Called(ctx, record)
	return accountArg(args.Get(0)), args.Error(1)
}

func (m *MockAccounts) CreateTx(ctx context.Context, tx bun.IDB, record *identity.Account) (*identity.Account, error) {
	args := m.Called(ctx, tx, record)
	return accountArg(args.Get(0)), args.Error(1)
}

func (m *MockAccounts) StorePendingCodeTx(ctx context.Context, tx bun.IDB, id uuid.UUID, code string) error {
	args := m.Called(ctx, tx, id, code)
	return args.Error(0)
}

func (m *MockAccounts) MarkVerifiedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockAccounts) ResetPasswordByEmailTx(ctx context.Context, tx bun.IDB, email, passwordHash string) error {
	args := m.Called(ctx, tx, email, passwordHash)
	return args.Error(0)
}

func accountArg(v any) *identity.Account {
	if v == nil {
		return nil
	}
	return v.(*identity.Account)
}

// MockMailer implements mailer.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

// MockTokenService implements identity.TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Generate(accountID, email string) (string, error) {
	args := m.Called(accountID, email)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) Validate(token string) (*identity.SessionClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.SessionClaims), args.Error(1)
}

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

func recordNotFound(email string) error {
	return repository.NewRecordNotFound().WithMetadata(map[string]any{"email": email})
}

// expectTx wires the standard RunInTx expectation.
func expectTx(repo *MockRepositoryManager) *mock.Call {
	return repo.On("RunInTx", mock.Anything, (*sql.TxOptions)(nil), mock.Anything).Return(nil)
}
