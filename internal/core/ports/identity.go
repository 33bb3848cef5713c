package ports

import (
	"context"
	"time"

	"github.com/sevakendra/portal-api/internal/core/domain"
)

// UserRepository defines persistence operations for identity records.
type UserRepository interface {
	// Create inserts user; a duplicate email yields domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	UpdateMetadata(ctx context.Context, id string, metadata domain.Metadata) (*domain.User, error)
}

// ProfileRepository defines persistence operations for role profiles.
type ProfileRepository interface {
	// FindByID yields domain.ErrProfileNotFound when no row exists.
	FindByID(ctx context.Context, id string) (*domain.Profile, error)
	// Upsert creates or replaces the role and name of a profile. It is idempotent.
	Upsert(ctx context.Context, profile *domain.Profile) error
}

// OTPStore keeps hashed one-time passcodes with a bounded attempt counter.
type OTPStore interface {
	Save(ctx context.Context, email, codeHash string, ttl time.Duration) error
	// Get returns the stored hash and failed attempts so far.
	// A missing or expired code yields domain.ErrOTPExpired.
	Get(ctx context.Context, email string) (codeHash string, attempts int, err error)
	IncrementAttempts(ctx context.Context, email string) (int, error)
	Delete(ctx context.Context, email string) error
}

// TokenRevocations records signed-out session token IDs until they expire.
type TokenRevocations interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// SubmissionLock guards against concurrent submissions by the same principal.
type SubmissionLock interface {
	// Acquire returns false when a lock for userID is already held.
	Acquire(ctx context.Context, userID string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, userID string) error
}

// AuthEventType names a change in a principal's authentication state.
type AuthEventType string

const (
	AuthEventSignedIn        AuthEventType = "signed_in"
	AuthEventSignedOut       AuthEventType = "signed_out"
	AuthEventMetadataUpdated AuthEventType = "metadata_updated"
)

// AuthEvent is published whenever a principal's session or identity changes.
type AuthEvent struct {
	Type        AuthEventType `json:"type"`
	PrincipalID string        `json:"principal_id"`
	TokenID     string        `json:"token_id,omitempty"`
	At          time.Time     `json:"at"`
}

// AuthEventBus fans auth-change events out to every API instance.
type AuthEventBus interface {
	Publish(ctx context.Context, event AuthEvent) error
	// Subscribe delivers events for principalID until cancel is called or ctx ends.
	Subscribe(ctx context.Context, principalID string) (events <-chan AuthEvent, cancel func(), err error)
}

// Session is an issued sign-in session.
type Session struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Principal domain.Principal `json:"user"`
}

// SessionClaims are the verified contents of a session token.
type SessionClaims struct {
	PrincipalID string
	Email       string
	TokenID     string
	ExpiresAt   time.Time
}

// RoleResolver determines the role of a principal.
type RoleResolver interface {
	Resolve(ctx context.Context, principal domain.Principal) (domain.Role, error)
}

// IdentityService defines the identity gateway use cases.
type IdentityService interface {
	SignUp(ctx context.Context, email, password string, metadata domain.Metadata) (*domain.User, error)
	CreateServiceProvider(ctx context.Context, email, password, fullName string) (*domain.User, error)

	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (*Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, claims *SessionClaims) error

	// VerifyToken parses a session token and rejects revoked ones.
	VerifyToken(ctx context.Context, token string) (*SessionClaims, error)
	// CurrentPrincipal loads the principal with its resolved role.
	CurrentPrincipal(ctx context.Context, principalID string) (*domain.Principal, error)
	UpdateMetadata(ctx context.Context, principalID, fullName string) (*domain.Principal, error)
}
