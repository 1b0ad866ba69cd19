package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/autoresolve/helpdesk-accounts/internal/api/metrics"
	"github.com/autoresolve/helpdesk-accounts/internal/core/domain"
	"github.com/autoresolve/helpdesk-accounts/internal/core/ports"
)

// ClaimsKey is the echo context key holding the verified *domain.Claims.
const ClaimsKey = "auth.claims"

// Auth verifies the bearer token and injects its claims into the context.
// Every failure, including a missing header, is reported as unauthorized.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				metrics.TokenVerificationsTotal.WithLabelValues("missing").Inc()
				return domain.ErrUnauthorized
			}

			claims, err := verifier.Verify(raw)
			metrics.TokenVerificationsTotal.WithLabelValues(metrics.TokenResult(err)).Inc()
			if err != nil {
				return err
			}

			c.Set(ClaimsKey, claims)
			return next(c)
		}
	}
}

// ClaimsFrom returns the claims stored by Auth, if any.
func ClaimsFrom(c echo.Context) (*domain.Claims, bool) {
	claims, ok := c.Get(ClaimsKey).(*domain.Claims)
	return claims, ok && claims != nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
