package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/todo-service/internal/service"
)

type stubVerifier struct {
	want string
	id   service.Identity
}

func (s stubVerifier) Verify(_ context.Context, raw string) (service.Identity, error) {
	if raw != s.want {
		return service.Identity{}, service.ErrUnauthorized
	}
	return s.id, nil
}

func runJWT(t *testing.T, v TokenVerifier, header string) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/todos/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	called := false
	err := JWTAuth(v)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	require.NoError(t, err)
	return rec, c, called
}

func TestJWTAuth_StoresIdentity(t *testing.T) {
	id := service.Identity{UserID: 7, TokenID: "jti-1", ExpiresAt: time.Now().Add(time.Minute)}
	rec, c, called := runJWT(t, stubVerifier{want: "good", id: id}, "Bearer good")

	require.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	got, ok := IdentityFrom(c)
	require.True(t, ok)
	assert.Equal(t, id, got)
	uid, ok := UserID(c)
	require.True(t, ok)
	assert.Equal(t, uint64(7), uid)
}

func TestJWTAuth_Rejects(t *testing.T) {
	v := stubVerifier{want: "good", id: service.Identity{UserID: 7}}
	for name, header := range map[string]string{
		"missing":      "",
		"wrong scheme": "Basic good",
		"empty token":  "Bearer   ",
		"bad token":    "Bearer forged",
	} {
		t.Run(name, func(t *testing.T) {
			rec, _, called := runJWT(t, v, header)
			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))
			assert.JSONEq(t, `{"error":"could not validate credentials"}`, rec.Body.String())
		})
	}
}

func TestBearerToken(t *testing.T) {
	tok, ok := bearerToken("bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)

	tok, ok = bearerToken("  Bearer   abc  ")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	_, ok = bearerToken("Bearerabc")
	assert.False(t, ok)
}

func TestIdentityFrom_Absent(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, ok := IdentityFrom(c)
	assert.False(t, ok)
	assert.Equal(t, "anon", userKey(c))

	c.Set(identityKey, "not an identity")
	_, ok = UserID(c)
	assert.False(t, ok)
}

func TestStubVerifierErrorIsUnauthorized(t *testing.T) {
	_, err := stubVerifier{want: "x"}.Verify(context.Background(), "y")
	assert.True(t, errors.Is(err, service.ErrUnauthorized))
}
