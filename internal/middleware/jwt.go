package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"context"  // verifier calls take the request context
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/todo-service/internal/service"
)

// TokenVerifier turns a raw bearer token into a verified identity.
// service.AuthService implements it.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (service.Identity, error)
}

// UnauthorizedMessage is deliberately generic: it is the same for missing,
// malformed, expired, forged and revoked tokens.
const UnauthorizedMessage = "could not validate credentials"

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// stores the verified identity in the request context.  Handlers read it
// with IdentityFrom or UserID; they never take a user id from the client.
func JWTAuth(v TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return Unauthorized(c)
			}
			id, err := v.Verify(c.Request().Context(), raw)
			if err != nil {
				return Unauthorized(c)
			}
			c.Set(identityKey, id)
			return next(c)
		}
	}
}

// Unauthorized writes the standard 401 response with a Bearer challenge.
func Unauthorized(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": UnauthorizedMessage})
}

// bearerToken extracts the token from an Authorization header.  The scheme
// is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
