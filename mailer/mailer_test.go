package mailer_test

import (
	"context"
	"testing"
	"time"

	"github.com/lpuqa/go-identity/mailer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTPMessage(t *testing.T) {
	subject, body := mailer.OTPMessage("123456")
	assert.Equal(t, "LPUQA Verification OTP", subject)
	assert.Equal(t, "Your OTP for LPUQA verification is: 123456", body)
}

func TestNoopSwallowsEverything(t *testing.T) {
	require.NoError(t, mailer.Noop{}.Send(context.Background(), "ada@example.com", "subject", "body"))
}

func TestSMTPDialFailure(t *testing.T) {
	m := mailer.NewSMTP(mailer.SMTPConfig{
		Host:        "127.0.0.1",
		Port:        "1", // nothing listens here
		DialTimeout: 100 * time.Millisecond,
	})

	err := m.Send(context.Background(), "ada@example.com", "subject", "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp dial")
}
