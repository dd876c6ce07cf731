package identity

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type ConfirmSignupCodeMessage struct {
	Email string `json:"email"`
	Code  string `json:"otp"`
}

func (e ConfirmSignupCodeMessage) Type() string { return "account.signup_confirm" }

// ConfirmSignupCodeHandler consumes a signup code: on match the account is
// marked verified and the code cleared, so a repeat confirmation fails.
type ConfirmSignupCodeHandler struct {
	repo    RepositoryManager
	machine *VerificationMachine
	logger  Logger
}

func NewConfirmSignupCodeHandler(repo RepositoryManager, machine *VerificationMachine) *ConfirmSignupCodeHandler {
	return &ConfirmSignupCodeHandler{
		repo:    repo,
		machine: machine,
		logger:  defLogger{},
	}
}

func (h *ConfirmSignupCodeHandler) WithLogger(logger Logger) *ConfirmSignupCodeHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ConfirmSignupCodeHandler) Execute(ctx context.Context, event ConfirmSignupCodeMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during signup confirmation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ConfirmSignupCodeHandler) execute(ctx context.Context, event ConfirmSignupCodeMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		acc, err := h.repo.Accounts().FindByEmailTx(ctx, tx, event.Email)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return h.machine.Guard(OpConfirmSignupCode, nil)
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for confirmation")
		}

		if err := h.machine.ConfirmSignup(acc, event.Code); err != nil {
			return err
		}

		if err := h.repo.Accounts().MarkVerifiedTx(ctx, tx, acc.ID); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist account verification")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "signup confirmation failed")
	}

	return nil
}
