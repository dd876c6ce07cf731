package identity

// The verification state machine owns the account lifecycle:
//
//	unregistered -> code_pending -> verified
//
// with an orthogonal reset_pending sub-state entered whenever a password
// reset code is outstanding on a verified account. States are derived from
// stored fields, not persisted as a separate column, so the machine is the
// single place that interprets (exists, is_verified, pending_code).

// AccountState is the conceptual lifecycle state derived from an Account.
type AccountState string

const (
	// StateUnregistered means no account exists for the email.
	StateUnregistered AccountState = "unregistered"
	// StateCodePending is an unverified account, whether or not a signup
	// code is currently outstanding.
	StateCodePending AccountState = "code_pending"
	// StateVerified is a verified account with no outstanding code.
	StateVerified AccountState = "verified"
	// StateResetPending is a verified account with an outstanding code,
	// issued by either a reset request or a signup resend. The stored
	// fields cannot distinguish the two.
	StateResetPending AccountState = "reset_pending"
)

// Operation names the state machine entry points guarded by the transition
// table.
type Operation string

const (
	OpIssueSignupCode      Operation = "signup.issue"
	OpConfirmSignupCode    Operation = "signup.confirm"
	OpResendSignupCode     Operation = "signup.resend"
	OpRequestPasswordReset Operation = "reset.request"
	OpConfirmResetCode     Operation = "reset.confirm"
	OpCompleteReset        Operation = "reset.complete"
	OpLogin                Operation = "login"
)

// StateOf derives the lifecycle state from an account record. nil means the
// email was never registered.
func StateOf(acc *Account) AccountState {
	switch {
	case acc == nil:
		return StateUnregistered
	case !acc.Verified:
		return StateCodePending
	case acc.HasPendingCode():
		return StateResetPending
	default:
		return StateVerified
	}
}

// VerificationMachine guards which operations are legal in which state and
// owns code issuance and consumption semantics.
type VerificationMachine struct {
	allowed  map[Operation]map[AccountState]struct{}
	generate CodeGenerator
}

// MachineOption customizes machine construction.
type MachineOption func(*VerificationMachine)

// WithCodeGenerator injects a custom code source (useful for tests).
func WithCodeGenerator(gen CodeGenerator) MachineOption {
	return func(m *VerificationMachine) {
		if gen != nil {
			m.generate = gen
		}
	}
}

// NewVerificationMachine returns the default machine.
func NewVerificationMachine(opts ...MachineOption) *VerificationMachine {
	registered := map[AccountState]struct{}{
		StateCodePending:  {},
		StateVerified:     {},
		StateResetPending: {},
	}

	m := &VerificationMachine{
		allowed: map[Operation]map[AccountState]struct{}{
			OpIssueSignupCode: {
				StateUnregistered: {},
			},
			// Resend and reset issuance are legal for verified accounts
			// too: a fresh code always overwrites the prior one.
			OpConfirmSignupCode:    registered,
			OpResendSignupCode:     registered,
			OpRequestPasswordReset: registered,
			OpConfirmResetCode:     registered,
			OpLogin:                registered,
			// The finalize step trusts the caller to have sequenced the
			// confirm call; it is legal from any state.
			OpCompleteReset: {
				StateUnregistered: {},
				StateCodePending:  {},
				StateVerified:     {},
				StateResetPending: {},
			},
		},
		generate: GenerateCode,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	return m
}

// Guard returns the domain error for an operation attempted in an illegal
// state, or nil when the transition is allowed.
func (m *VerificationMachine) Guard(op Operation, acc *Account) error {
	state := StateOf(acc)

	if allowed, ok := m.allowed[op]; ok {
		if _, legal := allowed[state]; legal {
			return nil
		}
	}

	if op == OpIssueSignupCode {
		return ErrDuplicateAccount
	}
	return ErrAccountNotFound
}

// IssueCode generates a fresh code and stores it on the account, overwriting
// (and thereby invalidating) any prior outstanding code.
func (m *VerificationMachine) IssueCode(acc *Account) string {
	code := m.generate()
	acc.PendingCode = code
	return code
}

// ConfirmSignup consumes the pending code: on match the account becomes
// verified and the code is cleared, so a repeat confirmation always fails.
func (m *VerificationMachine) ConfirmSignup(acc *Account, code string) error {
	if err := m.matchCode(acc, code); err != nil {
		return err
	}

	acc.Verified = true
	acc.PendingCode = ""
	return nil
}

// CheckResetCode verifies a password reset code without consuming it. The
// code stays outstanding until the reset completes or a new code overwrites
// it.
func (m *VerificationMachine) CheckResetCode(acc *Account, code string) error {
	return m.matchCode(acc, code)
}

func (m *VerificationMachine) matchCode(acc *Account, code string) error {
	// an empty stored code matches nothing, including an empty submission
	if acc == nil || !acc.HasPendingCode() || acc.PendingCode != code {
		return ErrCodeMismatch
	}
	return nil
}
