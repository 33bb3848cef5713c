package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sevakendra/portal-api/internal/core/domain"
	"github.com/sevakendra/portal-api/internal/core/ports"
)

// AuthHandler exposes the identity gateway over HTTP.
type AuthHandler struct {
	identity ports.IdentityService
}

func NewAuthHandler(identity ports.IdentityService) *AuthHandler {
	return &AuthHandler{identity: identity}
}

type otpRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code"  validate:"required,len=6,numeric"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateMetadataRequest struct {
	FullName string `json:"full_name" validate:"required,max=120"`
}

type createProviderRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	Password string `json:"password"  validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,max=120"`
}

type principalResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role,omitempty"`
	// Landing is the dashboard the principal is sent to after sign-in.
	Landing string `json:"landing"`
}

type sessionResponse struct {
	Token     string            `json:"token"`
	ExpiresAt string            `json:"expires_at"`
	User      principalResponse `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func toPrincipalResponse(p domain.Principal) principalResponse {
	return principalResponse{
		ID:       p.ID,
		Email:    p.Email,
		FullName: p.FullName,
		Role:     string(p.Role),
		Landing:  domain.LandingPath(p.Role),
	}
}

func toSessionResponse(s *ports.Session) sessionResponse {
	return sessionResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt.UTC().Format(time.RFC3339),
		User:      toPrincipalResponse(s.Principal),
	}
}

// SendOTP emails a one-time passcode, creating the citizen identity on first use.
//
// @Summary      Request a sign-in code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      otpRequest  true  "Citizen email"
// @Success      202   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /auth/otp [post]
func (h *AuthHandler) SendOTP(c echo.Context) error {
	var req otpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.identity.SendOTP(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, messageResponse{Message: "verification code sent"})
}

// VerifyOTP exchanges a one-time passcode for a session token.
//
// @Summary      Verify a sign-in code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      verifyOTPRequest  true  "Email and 6-digit code"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/otp/verify [post]
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	session, err := h.identity.VerifyOTP(c.Request().Context(), req.Email, req.Code)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(session))
}

// Login authenticates a service provider with email and password.
//
// @Summary      Provider login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	session, err := h.identity.SignInWithPassword(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(session))
}

// Logout revokes the current session token.
//
// @Summary      Sign out
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	if err := h.identity.SignOut(c.Request().Context(), claims); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "signed out"})
}

// Session returns the signed-in principal with its resolved role.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  principalResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	id, err := ctxPrincipalID(c)
	if err != nil {
		return err
	}
	principal, err := h.identity.CurrentPrincipal(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPrincipalResponse(*principal))
}

// UpdateMetadata changes the display name of the signed-in principal.
//
// @Summary      Update profile name
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateMetadataRequest  true  "New full name"
// @Success      200   {object}  principalResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/metadata [patch]
func (h *AuthHandler) UpdateMetadata(c echo.Context) error {
	id, err := ctxPrincipalID(c)
	if err != nil {
		return err
	}

	var req updateMetadataRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	principal, err := h.identity.UpdateMetadata(c.Request().Context(), id, req.FullName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPrincipalResponse(*principal))
}

// CreateProvider registers a new service provider account.
//
// @Summary      Create a service provider
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProviderRequest  true  "Provider account"
// @Success      201   {object}  principalResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /v1/admin/providers [post]
func (h *AuthHandler) CreateProvider(c echo.Context) error {
	var req createProviderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.identity.CreateServiceProvider(c.Request().Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		return err
	}

	p := user.Principal()
	p.Role = domain.RoleServiceProvider
	return c.JSON(http.StatusCreated, toPrincipalResponse(p))
}
