package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Mailer delivers account emails.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

// LogMailer writes emails to the log instead of sending them. It is the
// development transport.
type LogMailer struct {
	From   string
	Logger zerolog.Logger
}

func (m LogMailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	body := fmt.Sprintf("You requested a password reset for your Workout Planner account. "+
		"Open the link below to set a new password:\n\n%s\n\n"+
		"If you did not make this request you can safely ignore this email.", resetURL)
	m.Logger.Info().
		Str("from", m.From).
		Str("to", to).
		Str("subject", "Reset your Workout Planner password").
		Str("body", body).
		Msg("password reset email (not sent)")
	return nil
}
