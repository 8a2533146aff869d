package middleware

// identity.go holds the accessors for the identity JWTAuth stores in the
// Echo context.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-service/internal/service"
)

const identityKey = "identity"

// IdentityFrom returns the verified identity for the request, if any.
func IdentityFrom(c echo.Context) (service.Identity, bool) {
	id, ok := c.Get(identityKey).(service.Identity)
	return id, ok && id.UserID != 0
}

// UserID returns the verified user id for the request, if any.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := IdentityFrom(c)
	return id.UserID, ok
}

// userKey is the identity component of rate-limit keys: the user id when
// authenticated, "anon" otherwise.
func userKey(c echo.Context) string {
	if uid, ok := UserID(c); ok {
		return strconv.FormatUint(uid, 10)
	}
	return "anon"
}
