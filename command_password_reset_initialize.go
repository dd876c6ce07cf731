package identity

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/lpuqa/go-identity/mailer"
	"github.com/uptrace/bun"
)

type InitializePasswordResetMessage struct {
	Email string `json:"email"`
}

func (e InitializePasswordResetMessage) Type() string { return "account.password_reset" }

// InitializePasswordResetHandler issues a password reset code. The code
// shares the pending code slot with signup verification, so requesting a
// reset invalidates any outstanding signup code and vice versa.
type InitializePasswordResetHandler struct {
	repo    RepositoryManager
	machine *VerificationMachine
	mail    mailer.Mailer
	logger  Logger
}

func NewInitializePasswordResetHandler(repo RepositoryManager, machine *VerificationMachine, mail mailer.Mailer) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		repo:    repo,
		machine: machine,
		mail:    mail,
		logger:  defLogger{},
	}
}

func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	code := ""

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		acc, err := h.repo.Accounts().FindByEmailTx(ctx, tx, event.Email)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return h.machine.Guard(OpRequestPasswordReset, nil)
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for password reset")
		}

		code = h.machine.IssueCode(acc)

		if err := h.repo.Accounts().StorePendingCodeTx(ctx, tx, acc.ID, code); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store reset code")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to initialize password reset")
	}

	deliverCode(ctx, h.mail, h.logger, event.Email, code)

	return nil
}
