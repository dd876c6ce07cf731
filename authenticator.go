package identity

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// Authenticator verifies credentials and issues session tokens.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// Auther is the credential component: lookup by email, password check,
// verification check, token issuance.
type Auther struct {
	repo   RepositoryManager
	tokens TokenService
	logger Logger
}

// NewAuthenticator returns a new Auther.
func NewAuthenticator(repo RepositoryManager, tokens TokenService) *Auther {
	return &Auther{
		repo:   repo,
		tokens: tokens,
		logger: defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Login authenticates an email/password pair. The password is compared
// before the verification state is consulted, so a wrong password on an
// unverified account reports bad credentials, not the missing verification.
func (s *Auther) Login(ctx context.Context, email, password string) (string, error) {
	acc, err := s.repo.Accounts().FindByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return "", ErrAccountNotFound
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account during login")
	}

	if err := ComparePasswordAndHash(password, acc.PasswordHash); err != nil {
		s.logger.Debug("login password mismatch for %s", acc.Email)
		return "", ErrBadCredentials
	}

	if !acc.Verified {
		return "", ErrNotVerified
	}

	token, err := s.tokens.Generate(acc.ID.String(), acc.Email)
	if err != nil {
		s.logger.Error("login token generation failed: %v", err)
		return "", err
	}

	return token, nil
}

var _ Authenticator = (*Auther)(nil)
