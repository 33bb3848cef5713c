package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sevakendra/portal-api/internal/core/domain"
	"github.com/sevakendra/portal-api/internal/core/ports"
)

// Context keys set by Auth and Guard.
const (
	CtxPrincipalID = "principal_id"
	CtxEmail       = "email"
	CtxClaims      = "session_claims"
	CtxRole        = "role"
	CtxPrincipal   = "principal"
)

// TokenVerifier checks a session token and reports its claims.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*ports.SessionClaims, error)
}

// Auth validates the bearer session token and injects its claims into context.
func Auth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			token, ok := BearerToken(authHeader)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := verifier.VerifyToken(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidCredentials) {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
				return err
			}

			SetClaims(c, claims)
			return next(c)
		}
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// SetClaims stores verified session claims on c.
func SetClaims(c echo.Context, claims *ports.SessionClaims) {
	c.Set(CtxPrincipalID, claims.PrincipalID)
	c.Set(CtxEmail, claims.Email)
	c.Set(CtxClaims, claims)
}
