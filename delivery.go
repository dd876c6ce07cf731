package identity

import (
	"context"

	"github.com/lpuqa/go-identity/mailer"
)

// deliverCode dispatches a one time code on the email channel. Delivery is
// best effort: failures are logged and never surfaced, so the triggering
// operation still reports success with the code stored.
func deliverCode(ctx context.Context, m mailer.Mailer, logger Logger, email, code string) {
	subject, body := mailer.OTPMessage(code)
	if err := m.Send(ctx, email, subject, body); err != nil {
		logger.Warn("%s: %v (to=%s)", ErrDeliveryFailure.Message, err, email)
	}
}
