package identity

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

type VerifyPasswordResetCodeMessage struct {
	Email string `json:"email"`
	Code  string `json:"otp"`
}

func (e VerifyPasswordResetCodeMessage) Type() string { return "account.password_reset_verify" }

// VerifyPasswordResetCodeHandler checks a reset code without consuming it:
// the code stays outstanding until the reset completes or a new issuance
// overwrites it.
type VerifyPasswordResetCodeHandler struct {
	repo    RepositoryManager
	machine *VerificationMachine
	logger  Logger
}

func NewVerifyPasswordResetCodeHandler(repo RepositoryManager, machine *VerificationMachine) *VerifyPasswordResetCodeHandler {
	return &VerifyPasswordResetCodeHandler{
		repo:    repo,
		machine: machine,
		logger:  defLogger{},
	}
}

func (h *VerifyPasswordResetCodeHandler) WithLogger(logger Logger) *VerifyPasswordResetCodeHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *VerifyPasswordResetCodeHandler) Execute(ctx context.Context, event VerifyPasswordResetCodeMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during reset code verification",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyPasswordResetCodeHandler) execute(ctx context.Context, event VerifyPasswordResetCodeMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	acc, err := h.repo.Accounts().FindByEmail(ctx, event.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return h.machine.Guard(OpConfirmResetCode, nil)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for reset verification")
	}

	return h.machine.CheckResetCode(acc, event.Code)
}
