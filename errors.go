package identity

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeDuplicateAccount = "DUPLICATE_ACCOUNT"
	TextCodeAccountNotFound  = "ACCOUNT_NOT_FOUND"
	TextCodeCodeMismatch     = "CODE_MISMATCH"
	TextCodeBadCredentials   = "BAD_CREDENTIALS"
	TextCodeNotVerified      = "ACCOUNT_NOT_VERIFIED"
	TextCodeDeliveryFailure  = "DELIVERY_FAILURE"
	TextCodeEmptyPassword    = "EMPTY_PASSWORD"
	TextCodeTokenExpired     = "TOKEN_EXPIRED"
	TextCodeTokenMalformed   = "TOKEN_MALFORMED"
)

// ErrDuplicateAccount is returned when registration hits an existing email,
// regardless of that account's verification state.
var ErrDuplicateAccount = goerrors.New("email already registered", goerrors.CategoryConflict).
	WithTextCode(TextCodeDuplicateAccount).
	WithCode(goerrors.CodeConflict)

// ErrAccountNotFound is returned when no account matches the given email.
var ErrAccountNotFound = goerrors.New("account not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeAccountNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrCodeMismatch is returned when a supplied one time code does not equal
// the stored pending code, including when no code is outstanding.
var ErrCodeMismatch = goerrors.New("one time code does not match", goerrors.CategoryValidation).
	WithTextCode(TextCodeCodeMismatch).
	WithCode(goerrors.CodeBadRequest)

// ErrBadCredentials is returned when password verification fails.
var ErrBadCredentials = goerrors.New("password does not match", goerrors.CategoryAuth).
	WithTextCode(TextCodeBadCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrNotVerified is returned on login for accounts that never confirmed
// their signup code.
var ErrNotVerified = goerrors.New("account email not verified", goerrors.CategoryAuth).
	WithTextCode(TextCodeNotVerified).
	WithCode(goerrors.CodeForbidden)

// ErrDeliveryFailure marks a failed outbound code delivery. It is logged by
// the issuing command and never surfaced to callers.
var ErrDeliveryFailure = goerrors.New("one time code delivery failed", goerrors.CategoryOperation).
	WithTextCode(TextCodeDeliveryFailure)

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrTokenExpired is returned when a session token is past its expiry claim.
var ErrTokenExpired = goerrors.New("session token expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that fail parsing or signature
// verification.
var ErrTokenMalformed = goerrors.New("session token malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// HasTextCode reports whether err carries the given domain text code.
func HasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.TextCode == code
	}
	return false
}

// IsTokenExpiredError will check for expired tokens, including legacy
// string-matched errors from the JWT library.
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if HasTextCode(err, TextCodeTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}
