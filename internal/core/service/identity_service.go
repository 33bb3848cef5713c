package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/sevakendra/portal-api/internal/api/metrics"
	"github.com/sevakendra/portal-api/internal/core/domain"
	"github.com/sevakendra/portal-api/internal/core/ports"
)

const (
	defaultTokenTTL       = 24 * time.Hour
	defaultOTPTTL         = 10 * time.Minute
	defaultOTPMaxAttempts = 5
	minPasswordLength     = 8
	otpDigits             = 6
)

// IdentityConfig tunes sessions and passcodes.
type IdentityConfig struct {
	JWTSecret      string
	TokenTTL       time.Duration
	OTPTTL         time.Duration
	OTPMaxAttempts int
	// AppURL is the public address of the web client; passcode mails link to
	// its citizen dashboard.
	AppURL string
}

// IdentityDeps are the stores and channels the identity gateway depends on.
type IdentityDeps struct {
	Users       ports.UserRepository
	Profiles    ports.ProfileRepository
	Roles       ports.RoleResolver
	OTPs        ports.OTPStore
	Revocations ports.TokenRevocations
	Events      ports.AuthEventBus
	Sender      ports.OTPSender
}

type identityService struct {
	IdentityDeps
	cfg IdentityConfig
	log zerolog.Logger
}

type sessionTokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// NewIdentityService returns the identity gateway.
func NewIdentityService(deps IdentityDeps, cfg IdentityConfig, log zerolog.Logger) ports.IdentityService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = defaultOTPTTL
	}
	if cfg.OTPMaxAttempts <= 0 {
		cfg.OTPMaxAttempts = defaultOTPMaxAttempts
	}
	cfg.AppURL = strings.TrimRight(cfg.AppURL, "/")
	return &identityService{IdentityDeps: deps, cfg: cfg, log: log}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", domain.NewValidationError("email", "is required")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return "", domain.NewValidationError("email", "must be a valid email address")
	}
	return email, nil
}

func (s *identityService) SignUp(ctx context.Context, email, password string, metadata domain.Metadata) (*domain.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, domain.NewValidationError("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return s.createUser(ctx, email, string(hash), metadata)
}

func (s *identityService) createUser(ctx context.Context, email, passwordHash string, metadata domain.Metadata) (*domain.User, error) {
	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Metadata:     metadata,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.Users.Create(ctx, user)
	if err != nil {
		return nil, domain.NewStorageError("create user", err)
	}
	s.log.Info().Str("user_id", created.ID).Str("role", metadata.Role).Msg("user created")
	return created, nil
}

// CreateServiceProvider registers a provider account and its profile.
func (s *identityService) CreateServiceProvider(ctx context.Context, email, password, fullName string) (*domain.User, error) {
	md := domain.Metadata{Role: string(domain.RoleServiceProvider), FullName: strings.TrimSpace(fullName)}
	user, err := s.SignUp(ctx, email, password, md)
	if err != nil {
		return nil, err
	}
	s.syncProfile(ctx, user.ID, domain.RoleServiceProvider, md.FullName)
	return user, nil
}

// SendOTP issues a fresh passcode for email, creating the citizen identity
// on first use.
func (s *identityService) SendOTP(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	_, err = s.Users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		_, err = s.createUser(ctx, email, "", domain.Metadata{Role: string(domain.RoleCitizen)})
		if errors.Is(err, domain.ErrUserExists) {
			err = nil
		}
	}
	if err != nil {
		return domain.NewStorageError("find user", err)
	}

	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	if err := s.OTPs.Save(ctx, email, hashOTP(code), s.cfg.OTPTTL); err != nil {
		return domain.NewStorageError("save otp", err)
	}

	err = s.Sender.SendOTP(ctx, ports.OTPMessage{
		Email:      email,
		Code:       code,
		RedirectTo: s.cfg.AppURL + domain.CitizenDashboardPath,
		ExpiresAt:  time.Now().UTC().Add(s.cfg.OTPTTL),
	})
	if err != nil {
		metrics.OTPDeliveriesTotal.WithLabelValues("failed").Inc()
		return domain.NewStorageError("deliver otp", err)
	}
	metrics.OTPDeliveriesTotal.WithLabelValues("sent").Inc()
	return nil
}

// VerifyOTP exchanges a valid passcode for a session. A citizen whose
// metadata carries no role is stamped as citizen.
func (s *identityService) VerifyOTP(ctx context.Context, email, code string) (*ports.Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.NewValidationError("code", "is required")
	}

	stored, attempts, err := s.OTPs.Get(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrOTPExpired) {
			return nil, err
		}
		return nil, domain.NewStorageError("get otp", err)
	}
	if attempts >= s.cfg.OTPMaxAttempts {
		_ = s.OTPs.Delete(ctx, email)
		return nil, domain.ErrOTPExpired
	}
	if subtle.ConstantTimeCompare([]byte(hashOTP(code)), []byte(stored)) != 1 {
		if _, err := s.OTPs.IncrementAttempts(ctx, email); err != nil && !errors.Is(err, domain.ErrOTPExpired) {
			s.log.Warn().Err(err).Msg("failed to count otp attempt")
		}
		return nil, domain.ErrInvalidOTP
	}
	if err := s.OTPs.Delete(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to delete used otp")
	}

	user, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidOTP
		}
		return nil, domain.NewStorageError("find user", err)
	}

	if domain.NormalizeRole(user.Metadata.Role) == "" {
		md := user.Metadata
		md.Role = string(domain.RoleCitizen)
		updated, err := s.Users.UpdateMetadata(ctx, user.ID, md)
		if err != nil {
			return nil, domain.NewStorageError("update user metadata", err)
		}
		user = updated
		s.syncProfile(ctx, user.ID, domain.RoleCitizen, md.FullName)
	}

	principal := user.Principal()
	role, err := s.Roles.Resolve(ctx, principal)
	if err != nil && !errors.Is(err, domain.ErrRoleUndetermined) {
		return nil, err
	}
	principal.Role = role

	return s.issueSession(ctx, principal)
}

// SignInWithPassword signs in a service provider. Citizens are refused.
func (s *identityService) SignInWithPassword(ctx context.Context, email, password string) (*ports.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, domain.NewStorageError("find user", err)
	}
	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	principal := user.Principal()
	role, err := s.Roles.Resolve(ctx, principal)
	if err != nil && !errors.Is(err, domain.ErrRoleUndetermined) {
		return nil, err
	}
	if !role.IsProvider() {
		s.log.Info().Str("user_id", user.ID).Msg("password sign-in refused for non-provider")
		return nil, domain.ErrNotAuthorized
	}
	principal.Role = role

	return s.issueSession(ctx, principal)
}

func (s *identityService) issueSession(ctx context.Context, principal domain.Principal) (*ports.Session, error) {
	now := time.Now().UTC()
	expires := now.Add(s.cfg.TokenTTL)
	claims := sessionTokenClaims{
		Email: principal.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.publish(ctx, ports.AuthEvent{Type: ports.AuthEventSignedIn, PrincipalID: principal.ID, TokenID: claims.ID, At: now})
	s.log.Info().Str("user_id", principal.ID).Str("role", string(principal.Role)).Msg("session issued")

	return &ports.Session{Token: token, ExpiresAt: expires, Principal: principal}, nil
}

// SignOut revokes the session until it would have expired anyway.
func (s *identityService) SignOut(ctx context.Context, claims *ports.SessionClaims) error {
	if claims == nil {
		return domain.ErrInvalidCredentials
	}
	if err := s.Revocations.Revoke(ctx, claims.TokenID, time.Until(claims.ExpiresAt)); err != nil {
		return domain.NewStorageError("revoke token", err)
	}
	s.publish(ctx, ports.AuthEvent{
		Type:        ports.AuthEventSignedOut,
		PrincipalID: claims.PrincipalID,
		TokenID:     claims.TokenID,
		At:          time.Now().UTC(),
	})
	return nil
}

func (s *identityService) VerifyToken(ctx context.Context, raw string) (*ports.SessionClaims, error) {
	var claims sessionTokenClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, domain.ErrInvalidCredentials
	}

	revoked, err := s.Revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, domain.NewStorageError("check revocation", err)
	}
	if revoked {
		return nil, domain.ErrInvalidCredentials
	}

	return &ports.SessionClaims{
		PrincipalID: claims.Subject,
		Email:       claims.Email,
		TokenID:     claims.ID,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

// CurrentPrincipal loads principalID with its resolved role. An undetermined
// role leaves Role empty rather than failing.
func (s *identityService) CurrentPrincipal(ctx context.Context, principalID string) (*domain.Principal, error) {
	user, err := s.Users.FindByID(ctx, principalID)
	if err != nil {
		return nil, domain.NewStorageError("find user", err)
	}

	principal := user.Principal()
	role, err := s.Roles.Resolve(ctx, principal)
	if err != nil && !errors.Is(err, domain.ErrRoleUndetermined) {
		return nil, err
	}
	principal.Role = role
	return &principal, nil
}

// UpdateMetadata changes the display name of a principal. The role cannot be
// changed through this path.
func (s *identityService) UpdateMetadata(ctx context.Context, principalID, fullName string) (*domain.Principal, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, domain.NewValidationError("full_name", "is required")
	}

	user, err := s.Users.FindByID(ctx, principalID)
	if err != nil {
		return nil, domain.NewStorageError("find user", err)
	}

	md := user.Metadata
	md.FullName = fullName
	if _, err := s.Users.UpdateMetadata(ctx, principalID, md); err != nil {
		return nil, domain.NewStorageError("update user metadata", err)
	}
	if role := domain.NormalizeRole(md.Role); role != "" {
		s.syncProfile(ctx, principalID, role, fullName)
	}

	s.publish(ctx, ports.AuthEvent{Type: ports.AuthEventMetadataUpdated, PrincipalID: principalID, At: time.Now().UTC()})
	return s.CurrentPrincipal(ctx, principalID)
}

func (s *identityService) syncProfile(ctx context.Context, id string, role domain.Role, fullName string) {
	now := time.Now().UTC()
	err := s.Profiles.Upsert(ctx, &domain.Profile{ID: id, Role: role, FullName: fullName, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", id).Msg("failed to sync profile")
	}
}

func (s *identityService) publish(ctx context.Context, event ports.AuthEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("user_id", event.PrincipalID).Str("event", string(event.Type)).Msg("failed to publish auth event")
	}
}

func generateOTP() (string, error) {
	limit := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

func hashOTP(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
