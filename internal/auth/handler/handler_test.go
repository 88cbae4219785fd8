package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gapify/workflow-builder/internal/auth/federated"
	"github.com/gapify/workflow-builder/internal/auth/provider"
	"github.com/gapify/workflow-builder/internal/auth/provision"
	"github.com/gapify/workflow-builder/internal/session"
	"github.com/gapify/workflow-builder/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeExchanger struct {
	result *federated.Result
	err    error
}

func (f *fakeExchanger) Exchange(context.Context, string) (*federated.Result, error) {
	return f.result, f.err
}

func noLimit(c *gin.Context) { c.Next() }

type handlerFixture struct {
	users    *store.Memory
	sessions *session.MemoryStore
	exchange *fakeExchanger
	router   *gin.Engine
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	f := &handlerFixture{
		users:    store.NewMemory(),
		sessions: session.NewMemoryStore(),
		exchange: &fakeExchanger{},
	}

	h := NewHandler(
		f.exchange,
		provider.NewRegistry(),
		f.sessions,
		f.users,
		provision.NewService(f.users),
		nil, // credential service not exercised here
		nil,
		Config{
			CookieOptions: session.CookieOptions{Secure: true},
			SessionTTL:    24 * time.Hour,
			DefaultLocale: "en",
		},
	)

	f.router = gin.New()
	h.RegisterRoutes(f.router, noLimit)
	return f
}

func (f *handlerFixture) successResult() *federated.Result {
	return &federated.Result{
		SessionToken: "FreshSessionTokenFreshSessionTok",
		User:         &store.User{ID: "u-1", Name: "Acme", Email: "federated-account-7@platform.example.com"},
	}
}

func TestFederatedExchangeSuccess(t *testing.T) {
	f := newHandlerFixture(t)
	f.exchange.result = f.successResult()

	req := httptest.NewRequest(http.MethodGet, "/auth/federated?auth_token=abc", nil)
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"sessionToken":"FreshSessionTokenFreshSessionTok"`)
	assert.Contains(t, resp.Body.String(), `"email":"federated-account-7@platform.example.com"`)
}

func TestFederatedExchangeMissingToken(t *testing.T) {
	f := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/federated", nil)
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "missing auth_token")
}

func TestFederatedExchangeErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid token", federated.ErrInvalidToken, http.StatusBadRequest},
		{"verification failed", federated.ErrVerificationFailed, http.StatusUnauthorized},
		{"inconsistent state", federated.ErrInconsistentState, http.StatusInternalServerError},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newHandlerFixture(t)
			f.exchange.err = tc.err

			req := httptest.NewRequest(http.MethodGet, "/auth/federated?auth_token=abc", nil)
			resp := httptest.NewRecorder()
			f.router.ServeHTTP(resp, req)

			assert.Equal(t, tc.status, resp.Code)
			assert.Contains(t, resp.Body.String(), "error")
		})
	}
}

func TestLandingWithoutTokenRedirects(t *testing.T) {
	f := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, "/workflows", resp.Header().Get("Location"))
	assert.Empty(t, resp.Result().Cookies())
}

func TestLandingLocaleAwareRedirect(t *testing.T) {
	f := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/?locale=fr", nil)
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, "/fr/workflows", resp.Header().Get("Location"))
}

func TestLandingDefaultLocaleNotPrefixed(t *testing.T) {
	f := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/?locale=en", nil)
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, "/workflows", resp.Header().Get("Location"))
}

func TestLandingExchangeSetsCookiesAndRedirects(t *testing.T) {
	f := newHandlerFixture(t)
	f.exchange.result = f.successResult()

	req := httptest.NewRequest(http.MethodGet, "/?auth_token=abc", nil)
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, "/workflows", resp.Header().Get("Location"))

	cookies := resp.Result().Cookies()
	require.Len(t, cookies, 2)
	assert.Equal(t, session.TokenCookieName, cookies[0].Name)
	assert.Equal(t, "FreshSessionTokenFreshSessionTok", cookies[0].Value)
	assert.Equal(t, session.SnapshotCookieName, cookies[1].Name)
	for _, c := range cookies {
		assert.True(t, c.Secure)
		assert.False(t, c.HttpOnly)
	}
}

func TestLandingExchangeFailureSurfacesError(t *testing.T) {
	f := newHandlerFixture(t)
	f.exchange.err = federated.ErrVerificationFailed

	req := httptest.NewRequest(http.MethodGet, "/?auth_token=abc", nil)
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)

	// No silent anonymous redirect on a broken integration.
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Empty(t, resp.Header().Get("Location"))
	assert.Empty(t, resp.Result().Cookies())
}

func TestLogoutDeletesSessionAndClearsCookies(t *testing.T) {
	f := newHandlerFixture(t)
	require.NoError(t, f.sessions.Upsert(context.Background(), session.Session{
		Token: "sess-1", UserID: "u-1", ExpiresAt: time.Now().Add(time.Hour),
	}))

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: session.TokenCookieName, Value: "sess-1"})
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Zero(t, f.sessions.Len())

	cookies := resp.Result().Cookies()
	require.Len(t, cookies, 2)
	for _, c := range cookies {
		assert.Equal(t, -1, c.MaxAge)
	}
}

func TestLogoutWithoutSessionIsIdempotent(t *testing.T) {
	f := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNoContent, resp.Code)
}
