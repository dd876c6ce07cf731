package identity

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/lpuqa/go-identity/mailer"
	"github.com/uptrace/bun"
)

type IssueSignupCodeMessage struct {
	FullName   string `json:"fullname"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	OnResponse func(resp *IssueSignupCodeResponse)
}

func (e IssueSignupCodeMessage) Type() string { return "account.signup_code" }

type IssueSignupCodeResponse struct {
	Account *Account
}

// IssueSignupCodeHandler registers a new unverified account and dispatches
// its first one time code.
type IssueSignupCodeHandler struct {
	repo    RepositoryManager
	machine *VerificationMachine
	mail    mailer.Mailer
	logger  Logger
}

func NewIssueSignupCodeHandler(repo RepositoryManager, machine *VerificationMachine, mail mailer.Mailer) *IssueSignupCodeHandler {
	return &IssueSignupCodeHandler{
		repo:    repo,
		machine: machine,
		mail:    mail,
		logger:  defLogger{},
	}
}

func (h *IssueSignupCodeHandler) WithLogger(logger Logger) *IssueSignupCodeHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *IssueSignupCodeHandler) Execute(ctx context.Context, event IssueSignupCodeMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during signup code issuance",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *IssueSignupCodeHandler) execute(ctx context.Context, event IssueSignupCodeMessage) error {
	acc := &Account{}
	code := ""

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := h.repo.Accounts().FindByEmailTx(ctx, tx, event.Email)
		if err != nil && !repository.IsRecordNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing account")
		}

		// a duplicate registration is rejected regardless of the existing
		// account's verification state
		if err := h.machine.Guard(OpIssueSignupCode, existing); err != nil {
			return err
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password provided")
		}

		acc.Email = event.Email
		acc.FullName = event.FullName
		acc.PasswordHash = hash
		code = h.machine.IssueCode(acc)

		if acc, err = h.repo.Accounts().CreateTx(ctx, tx, acc); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create account")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "signup code issuance failed")
	}

	deliverCode(ctx, h.mail, h.logger, event.Email, code)

	if event.OnResponse != nil {
		event.OnResponse(&IssueSignupCodeResponse{Account: acc})
	}

	return nil
}
