package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/sevakendra/portal-api/internal/core/ports"
)

// LogNotifier writes notifications to the log instead of delivering them.
// Only meant for development: passcodes appear in clear text.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendOTP(_ context.Context, msg ports.OTPMessage) error {
	n.log.Info().
		Str("email", msg.Email).
		Str("code", msg.Code).
		Str("redirect_to", msg.RedirectTo).
		Time("expires_at", msg.ExpiresAt).
		Msg("otp issued")
	return nil
}

func (n *LogNotifier) NotifyStatusChange(_ context.Context, sn ports.StatusNotification) error {
	n.log.Info().
		Str("application_id", sn.ApplicationID).
		Str("user_id", sn.UserID).
		Str("from", string(sn.From)).
		Str("status", string(sn.To)).
		Msg("status change notification")
	return nil
}

func (n *LogNotifier) Close() error { return nil }
