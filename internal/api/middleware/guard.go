package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sevakendra/portal-api/internal/api/metrics"
	"github.com/sevakendra/portal-api/internal/core/domain"
)

// View names a guarded area of the portal.
type View string

const (
	ViewCitizen  View = "citizen"
	ViewProvider View = "provider"
)

// RequiresProvider reports whether v is restricted to service providers.
func (v View) RequiresProvider() bool { return v == ViewProvider }

// ParseView maps a query value onto a View. Unknown values are rejected.
func ParseView(raw string) (View, bool) {
	switch View(raw) {
	case ViewCitizen, ViewProvider:
		return View(raw), true
	}
	return "", false
}

// PrincipalLoader loads a principal with its resolved role.
type PrincipalLoader interface {
	CurrentPrincipal(ctx context.Context, principalID string) (*domain.Principal, error)
}

type redirectResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect"`
}

// Guard runs the access guard for view. It must be mounted after Auth.
func Guard(loader PrincipalLoader, view View) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			state := domain.SessionState{}
			var principal *domain.Principal

			if id, _ := c.Get(CtxPrincipalID).(string); id != "" {
				p, err := loader.CurrentPrincipal(c.Request().Context(), id)
				switch {
				case err == nil:
					principal = p
					state.Authenticated = true
					state.Role = p.Role
				case errors.Is(err, domain.ErrUserNotFound):
				default:
					return err
				}
			}

			decision := domain.Authorize(state, view.RequiresProvider())
			metrics.GuardDecisionsTotal.WithLabelValues(string(view), string(decision)).Inc()

			switch decision {
			case domain.DecisionAllow:
				c.Set(CtxPrincipal, principal)
				c.Set(CtxRole, string(principal.Role))
				return next(c)
			case domain.DecisionRedirectCitizenDashboard:
				return c.JSON(http.StatusForbidden, redirectResponse{
					Error:    "service provider access required",
					Redirect: decision.RedirectTarget(),
				})
			default:
				return c.JSON(http.StatusUnauthorized, redirectResponse{
					Error:    "authentication required",
					Redirect: domain.HomePath,
				})
			}
		}
	}
}
