package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshotUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func TestCookiesPair(t *testing.T) {
	user := snapshotUser{ID: "u-1", Name: "Acme", Email: "acme@example.com"}

	cookies, err := Cookies("tok-123", user, CookieOptions{
		Secure: true,
		MaxAge: 24 * time.Hour,
	})
	require.NoError(t, err)
	require.Len(t, cookies, 2)

	token, snapshot := cookies[0], cookies[1]

	assert.Equal(t, TokenCookieName, token.Name)
	assert.Equal(t, "tok-123", token.Value)

	for _, c := range cookies {
		assert.Equal(t, "/", c.Path)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
		assert.Equal(t, int((24 * time.Hour).Seconds()), c.MaxAge)
		assert.True(t, c.Secure)
		// Both cookies stay readable by client script.
		assert.False(t, c.HttpOnly)
	}

	raw, err := url.QueryUnescape(snapshot.Value)
	require.NoError(t, err)

	var decoded snapshotUser
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, user, decoded)
}

func TestCookiesSecureFollowsOptions(t *testing.T) {
	cookies, err := Cookies("tok", snapshotUser{}, CookieOptions{Secure: false})
	require.NoError(t, err)
	for _, c := range cookies {
		assert.False(t, c.Secure)
	}
}

func TestSetAndClearCookies(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, SetCookies(rec, "tok", snapshotUser{ID: "u-1"}, CookieOptions{}))

	set := rec.Result().Cookies()
	require.Len(t, set, 2)
	assert.Equal(t, TokenCookieName, set[0].Name)
	assert.Equal(t, SnapshotCookieName, set[1].Name)

	rec = httptest.NewRecorder()
	ClearCookies(rec, CookieOptions{})
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 2)
	for _, c := range cleared {
		assert.Equal(t, -1, c.MaxAge)
		assert.Empty(t, c.Value)
	}
}
