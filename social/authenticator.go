package social

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	identity "github.com/lpuqa/go-identity"
	"github.com/uptrace/bun"
)

// Authenticator drives the federated login flow: it hands out provider
// authorization URLs and turns OAuth callbacks into local accounts.
type Authenticator struct {
	repo      identity.RepositoryManager
	providers map[string]Provider
	states    StateManager
	logger    identity.Logger
}

// Result is the outcome of a completed federated login.
type Result struct {
	Account *identity.Account
	IsNew   bool
}

// Option configures the Authenticator.
type Option func(*Authenticator) *Authenticator

// WithLogger sets the logger.
func WithLogger(logger identity.Logger) Option {
	return func(a *Authenticator) *Authenticator {
		if logger != nil {
			a.logger = logger
		}
		return a
	}
}

// NewAuthenticator creates a federated login authenticator.
func NewAuthenticator(repo identity.RepositoryManager, states StateManager, providers []Provider, opts ...Option) *Authenticator {
	a := &Authenticator{
		repo:      repo,
		states:    states,
		providers: map[string]Provider{},
		logger:    identity.DefaultLogger(),
	}

	for _, p := range providers {
		if p != nil {
			a.providers[p.Name()] = p
		}
	}

	for _, opt := range opts {
		a = opt(a)
	}

	return a
}

// Provider returns the named provider, or nil if not configured.
func (a *Authenticator) Provider(name string) Provider {
	return a.providers[name]
}

// BeginAuth encodes a signed state and returns the provider redirect URL.
func (a *Authenticator) BeginAuth(ctx context.Context, providerName string) (string, error) {
	provider, ok := a.providers[providerName]
	if !ok {
		return "", goerrors.New(
			"unknown provider: "+providerName,
			goerrors.CategoryNotFound,
		).WithCode(goerrors.CodeNotFound)
	}

	state, err := a.states.Encode(&OAuthState{Provider: providerName})
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode oauth state")
	}

	return provider.AuthCodeURL(state), nil
}

// CompleteAuth verifies the callback state, exchanges the code, fetches
// the provider profile and resolves it to a local account.
func (a *Authenticator) CompleteAuth(ctx context.Context, providerName, code, state string) (*Result, error) {
	provider, ok := a.providers[providerName]
	if !ok {
		return nil, goerrors.New(
			"unknown provider: "+providerName,
			goerrors.CategoryNotFound,
		).WithCode(goerrors.CodeNotFound)
	}

	decoded, err := a.states.Decode(state)
	if err != nil {
		return nil, err
	}

	if decoded.Provider != providerName {
		return nil, ErrInvalidState
	}

	token, err := provider.Exchange(ctx, code)
	if err != nil {
		return nil, wrapProviderError(ErrTokenExchangeFailed, providerName, "exchange", err)
	}

	profile, err := provider.UserInfo(ctx, token)
	if err != nil {
		return nil, wrapProviderError(ErrUserInfoFailed, providerName, "user_info", err)
	}

	return a.FederatedLogin(ctx, profile)
}

// FederatedLogin resolves a provider profile to an account: an existing
// account with the same email is reused as is, otherwise a verified
// account is created with no local password. The external id is never
// rebound on an existing account.
func (a *Authenticator) FederatedLogin(ctx context.Context, profile *Profile) (*Result, error) {
	if profile == nil || profile.Email == "" {
		return nil, ErrMissingEmail
	}

	result := &Result{}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := a.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := a.repo.Accounts().FindByEmailTx(ctx, tx, profile.Email)
		if err != nil && !repository.IsRecordNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account")
		}

		if existing != nil {
			result.Account = existing
			return nil
		}

		acc := &identity.Account{
			Email:      profile.Email,
			FullName:   profile.Name,
			ExternalID: profile.ProviderUserID,
			Verified:   true,
		}

		created, err := a.repo.Accounts().CreateTx(ctx, tx, acc)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create account")
		}

		result.Account = created
		result.IsNew = true

		return nil
	})
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "federated login failed")
	}

	if result.IsNew {
		a.logger.Info("created account %s from %s profile", result.Account.Email, profile.Provider)
	}

	return result, nil
}
