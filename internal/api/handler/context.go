package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sevakendra/portal-api/internal/api/middleware"
	"github.com/sevakendra/portal-api/internal/core/ports"
)

// ctxPrincipalID extracts the principal injected by the Auth middleware.
// Its absence means the route was mounted without Auth.
func ctxPrincipalID(c echo.Context) (string, error) {
	id, _ := c.Get(middleware.CtxPrincipalID).(string)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}

func ctxClaims(c echo.Context) (*ports.SessionClaims, error) {
	claims, _ := c.Get(middleware.CtxClaims).(*ports.SessionClaims)
	if claims == nil || claims.PrincipalID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}
