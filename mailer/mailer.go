// Package mailer is the outbound email channel: a fire and forget "deliver
// this code to this address" capability. Senders return errors, but callers
// treat delivery as best effort and only log failures.
package mailer

import (
	"context"
	"fmt"
)

// Mailer delivers a single message to a single recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// OTPMessage formats the verification email for a one time code.
func OTPMessage(code string) (subject, body string) {
	subject = "LPUQA Verification OTP"
	body = fmt.Sprintf("Your OTP for LPUQA verification is: %s", code)
	return subject, body
}

// Noop discards messages. Used in tests and when no SMTP account is
// configured.
type Noop struct{}

func (Noop) Send(ctx context.Context, to, subject, body string) error {
	return nil
}

var _ Mailer = Noop{}
