package identity_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	identity "github.com/lpuqa/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newVerifiedAccount(t *testing.T, password string) *identity.Account {
	t.Helper()

	hash, err := identity.HashPassword(password)
	require.NoError(t, err)

	return &identity.Account{
		ID:           uuid.New(),
		Email:        "ada@example.com",
		PasswordHash: hash,
		Verified:     true,
	}
}

func TestLoginIssuesToken(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	accounts := &MockAccounts{}
	tokens := &MockTokenService{}

	acc := newVerifiedAccount(t, "password12345")

	repo.On("Accounts").Return(accounts).Once()
	accounts.On("FindByEmail", mock.Anything, acc.Email).Return(acc, nil).Once()
	tokens.On("Generate", acc.ID.String(), acc.Email).Return("signed-token", nil).Once()

	auther := identity.NewAuthenticator(repo, tokens).WithLogger(testLogger{})

	token, err := auther.Login(ctx, acc.Email, "password12345")
	require.NoError(t, err)
	assert.Equal(t, "signed-token", token)

	repo.AssertExpectations(t)
	accounts.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestLoginUnknownEmail(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	accounts := &MockAccounts{}
	tokens := &MockTokenService{}

	repo.On("Accounts").Return(accounts).Once()
	accounts.On("FindByEmail", mock.Anything, "ghost@example.com").
		Return(nil, recordNotFound("ghost@example.com")).Once()

	auther := identity.NewAuthenticator(repo, tokens).WithLogger(testLogger{})

	_, err := auther.Login(ctx, "ghost@example.com", "whatever")
	require.Error(t, err)
	assert.True(t, identity.HasTextCode(err, identity.TextCodeAccountNotFound))
	tokens.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	accounts := &MockAccounts{}
	tokens := &MockTokenService{}

	acc := newVerifiedAccount(t, "password12345")

	repo.On("Accounts").Return(accounts).Once()
	accounts.On("FindByEmail", mock.Anything, acc.Email).Return(acc, nil).Once()

	auther := identity.NewAuthenticator(repo, tokens).WithLogger(testLogger{})

	_, err := auther.Login(ctx, acc.Email, "wrong-password")
	require.Error(t, err)
	assert.True(t, identity.HasTextCode(err, identity.TextCodeBadCredentials))
	tokens.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestLoginUnverifiedAccount(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	accounts := &MockAccounts{}
	tokens := &MockTokenService{}

	acc := newVerifiedAccount(t, "password12345")
	acc.Verified = false
	acc.PendingCode = "123456"

	repo.On("Accounts").Return(accounts).Once()
	accounts.On("FindByEmail", mock.Anything, acc.Email).Return(acc, nil).Once()

	auther := identity.NewAuthenticator(repo, tokens).WithLogger(testLogger{})

	_, err := auther.Login(ctx, acc.Email, "password12345")
	require.Error(t, err)
	assert.True(t, identity.HasTextCode(err, identity.TextCodeNotVerified))
}

func TestLoginWrongPasswordWinsOverUnverified(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	accounts := &MockAccounts{}
	tokens := &MockTokenService{}

	acc := newVerifiedAccount(t, "password12345")
	acc.Verified = false

	repo.On("Accounts").Return(accounts).Once()
	accounts.On("FindByEmail", mock.Anything, acc.Email).Return(acc, nil).Once()

	auther := identity.NewAuthenticator(repo, tokens).WithLogger(testLogger{})

	_, err := auther.Login(ctx, acc.Email, "wrong-password")
	require.Error(t, err)
	assert.True(t, identity.HasTextCode(err, identity.TextCodeBadCredentials))
}
