package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feastly/food-ordering-backend/internal/middleware"
	"github.com/feastly/food-ordering-backend/internal/utils"
)

var mwSecret = []byte("middleware-test-signing-key!!!!!")

type fakeDenylist struct{ denied map[string]bool }

func (d *fakeDenylist) Contains(_ context.Context, token string) bool { return d.denied[token] }

func newProtectedServer(denylist middleware.TokenDenylist) *echo.Echo {
	e := echo.New()
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(mwSecret, denylist))
	g.GET("/me", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"email": middleware.Subject(c)})
	})
	return e
}

func doGet(e *echo.Echo, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	token, err := utils.IssueAccessToken(mwSecret, "ada@example.com", time.Minute)
	require.NoError(t, err)

	rec := doGet(newProtectedServer(&fakeDenylist{denied: map[string]bool{}}), "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ada@example.com")
}

func TestJWTAuthRejectsMissingOrMalformedHeader(t *testing.T) {
	e := newProtectedServer(&fakeDenylist{denied: map[string]bool{}})

	assert.Equal(t, http.StatusUnauthorized, doGet(e, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(e, "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(e, "Bearer garbage").Code)
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	token, err := utils.IssueAccessToken(mwSecret, "ada@example.com", -time.Minute)
	require.NoError(t, err)

	rec := doGet(newProtectedServer(&fakeDenylist{denied: map[string]bool{}}), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthConsultsDenylist(t *testing.T) {
	token, err := utils.IssueAccessToken(mwSecret, "ada@example.com", time.Minute)
	require.NoError(t, err)

	// Same token: accepted before logout, rejected after.
	deny := &fakeDenylist{denied: map[string]bool{}}
	e := newProtectedServer(deny)
	assert.Equal(t, http.StatusOK, doGet(e, "Bearer "+token).Code)

	deny.denied[token] = true
	assert.Equal(t, http.StatusUnauthorized, doGet(e, "Bearer "+token).Code)
}
