package identity

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/lpuqa/go-identity/mailer"
	"github.com/uptrace/bun"
)

type ResendSignupCodeMessage struct {
	Email string `json:"email"`
}

func (e ResendSignupCodeMessage) Type() string { return "account.signup_resend" }

// ResendSignupCodeHandler overwrites any outstanding code with a fresh one
// and dispatches it. Verified accounts are not blocked from receiving a new
// outstanding code.
type ResendSignupCodeHandler struct {
	repo    RepositoryManager
	machine *VerificationMachine
	mail    mailer.Mailer
	logger  Logger
}

func NewResendSignupCodeHandler(repo RepositoryManager, machine *VerificationMachine, mail mailer.Mailer) *ResendSignupCodeHandler {
	return &ResendSignupCodeHandler{
		repo:    repo,
		machine: machine,
		mail:    mail,
		logger:  defLogger{},
	}
}

func (h *ResendSignupCodeHandler) WithLogger(logger Logger) *ResendSignupCodeHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ResendSignupCodeHandler) Execute(ctx context.Context, event ResendSignupCodeMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during signup code resend",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ResendSignupCodeHandler) execute(ctx context.Context, event ResendSignupCodeMessage) error {
	code := ""

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		acc, err := h.repo.Accounts().FindByEmailTx(ctx, tx, event.Email)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return h.machine.Guard(OpResendSignupCode, nil)
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for resend")
		}

		code = h.machine.IssueCode(acc)

		if err := h.repo.Accounts().StorePendingCodeTx(ctx, tx, acc.ID, code); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store fresh code")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "signup code resend failed")
	}

	deliverCode(ctx, h.mail, h.logger, event.Email, code)

	return nil
}
