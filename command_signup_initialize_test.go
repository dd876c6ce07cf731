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

func fixedCodeMachine(code string) *identity.VerificationMachine {
	return identity.NewVerificationMachine(identity.WithCodeGenerator(func() string {
		return code
	}))
}

func TestIssueSignupCodeCreatesAccountAndSendsCode(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	accounts := &MockAccounts{}
	mail := &MockMailer{}

	repo.On("Accounts").Return(accounts)
	expectTx(repo).Once()

	accounts.On("FindByEmailTx", mock.Anything, mock.Anything, "ada@example.com").
		Return(nil, recordNotFound("ada@example.com")).Once()

	accounts.On("CreateTx", mock.Anything, mock.Anything, mock.MatchedBy(func(acc *identity.Account) bool {
		return acc.Email == "ada@example.com" &&
			acc.FullName == "Ada Lovelace" &&
			acc.PendingCode == "123456" &&
			!acc.Verified &&
			acc.PasswordHash != "" &&
			acc.PasswordHash != "password12345"
	})).Return(&identity.Account{ID: uuid.New(), Email: "ada@example.com"}, nil).Once()

	mail.On("Send", mock.Anything, "ada@example.com", "LPUQA Verification OTP", "Your OTP for LPUQA verification is: 123456").
		Return(nil).Once()

	handler := identity.NewIssueSignupCodeHandler(repo, fixedCodeMachine("123456"), mail).
		WithLogger(testLogger{})

	var resp *identity.IssueSignupCodeResponse
	err := handler.Execute(ctx, identity.IssueSignupCodeMessage{
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "password12345",
		OnResponse: func(r *identity.IssueSignupCodeResponse) {
			resp = r
		},
	})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "ada@example.com", resp.Account.Email)

	repo.AssertExpectations(t)
	accounts.AssertExpectations(t)
	mail.AssertExpectations(t)
}

func TestIssueSignupCodeRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	accounts := &MockAccounts{}
	mail := &MockMailer{}

	repo.On("Accounts").Return(accounts)
	expectTx(repo).Once()

	// the duplicate is rejected whether or not it finished verification
	accounts.On("FindByEmailTx", mock.Anything, mock.Anything, "ada@example.com").
		Return(&identity.Account{ID: uuid.New(), Email: "ada@example.com", PendingCode: "111111"}, nil).Once()

	handler := identity.NewIssueSignupCodeHandler(repo, fixedCodeMachine("123456"), mail).
		WithLogger(testLogger{})

	err := handler.Execute(ctx, identity.IssueSignupCodeMessage{
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "password12345",
	})
	require.Error(t, err)
	assert.True(t, identity.HasTextCode(err, identity.TextCodeDuplicateAccount))

	accounts.AssertNotCalled(t, "CreateTx", mock.Anything, mock.Anything, mock.Anything)
	mail.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestIssueSignupCodeRejectsEmptyPassword(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	accounts := &MockAccounts{}
	mail := &MockMailer{}

	repo.On("Accounts").Return(accounts)
	expectTx(repo).Once()

	accounts.On("FindByEmailTx", mock.Anything, mock.Anything, "ada@example.com").
		Return(nil, recordNotFound("ada@example.com")).Once()

	handler := identity.NewIssueSignupCodeHandler(repo, fixedCodeMachine("123456"), mail).
		WithLogger(testLogger{})

	err := handler.Execute(ctx, identity.IssueSignupCodeMessage{
		Email:    "ada@example.com",
		Password: "",
	})
	require.Error(t, err)

	accounts.AssertNotCalled(t, "CreateTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestIssueSignupCodeReportsSuccessWhenDeliveryFails(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	accounts := &MockAccounts{}
	mail := &MockMailer{}

	repo.On("Accounts").Return(accounts)
	expectTx(repo).Once()

	accounts.On("FindByEmailTx", mock.Anything, mock.Anything, "ada@example.com").
		Return(nil, recordNotFound("ada@example.com")).Once()
	accounts.On("CreateTx", mock.Anything, mock.Anything, mock.Anything).
		Return(&identity.Account{ID: uuid.New(), Email: "ada@example.com"}, nil).Once()

	mail.On("Send", mock.Anything, "ada@example.com", mock.Anything, mock.Anything).
		Return(assert.AnError).Once()

	handler := identity.NewIssueSignupCodeHandler(repo, fixedCodeMachine("123456"), mail).
		WithLogger(testLogger{})

	// delivery is best effort, the registration itself succeeded
	err := handler.Execute(ctx, identity.IssueSignupCodeMessage{
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "password12345",
	})
	require.NoError(t, err)

	mail.AssertExpectations(t)
}
