package ports

import (
	"context"
	"time"

	"github.com/sevakendra/portal-api/internal/core/domain"
)

// OTPMessage is a passcode delivery request.
type OTPMessage struct {
	Email      string    `json:"email"`
	Code       string    `json:"code"`
	RedirectTo string    `json:"redirect_to"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// OTPSender delivers one-time passcodes to citizens.
type OTPSender interface {
	SendOTP(ctx context.Context, msg OTPMessage) error
}

// StatusNotification tells a citizen their application changed state.
type StatusNotification struct {
	ApplicationID string                   `json:"application_id"`
	UserID        string                   `json:"user_id"`
	Email         string                   `json:"email"`
	Service       domain.ServiceType       `json:"service"`
	From          domain.ApplicationStatus `json:"from"`
	To            domain.ApplicationStatus `json:"to"`
	Notes         string                   `json:"notes,omitempty"`
	At            time.Time                `json:"at"`
}

// StatusNotifier delivers status-change notifications.
type StatusNotifier interface {
	NotifyStatusChange(ctx context.Context, n StatusNotification) error
}

// NotificationQueue accepts status notifications for asynchronous delivery.
// Enqueue never blocks; it reports false when the notification was dropped.
type NotificationQueue interface {
	Enqueue(n StatusNotification) bool
}
