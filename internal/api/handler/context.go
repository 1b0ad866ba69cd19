package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/autoresolve/helpdesk-accounts/internal/api/middleware"
	"github.com/autoresolve/helpdesk-accounts/internal/core/domain"
)

// ctxClaims returns the claims injected by the Auth middleware. Their absence
// means the route was registered without it, which is treated as unauthorized.
func ctxClaims(c echo.Context) (*domain.Claims, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok || claims.Subject == "" {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
