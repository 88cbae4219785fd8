package session

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	// TokenCookieName carries the session token.
	TokenCookieName = "session_token"
	// SnapshotCookieName carries a JSON snapshot of the signed-in user,
	// readable by client script. Part of the external contract.
	SnapshotCookieName = "user_snapshot"
)

// CookieOptions defines how session cookies are issued.
type CookieOptions struct {
	Path     string
	Secure   bool
	SameSite http.SameSite
	MaxAge   time.Duration
}

// normalize applies defaults without breaking callers.
func (o CookieOptions) normalize() CookieOptions {
	if o.Path == "" {
		o.Path = "/"
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteLaxMode
	}
	if o.MaxAge == 0 {
		o.MaxAge = 24 * time.Hour
	}
	return o
}

// Cookies renders the pair of cookie directives for a freshly issued
// session: the token cookie and the user snapshot cookie. Neither is
// HttpOnly; the client script reads both.
func Cookies(token string, user any, opts CookieOptions) ([]*http.Cookie, error) {
	opts = opts.normalize()

	snapshot, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("session: failed to marshal user snapshot: %w", err)
	}

	return []*http.Cookie{
		{
			Name:     TokenCookieName,
			Value:    token,
			Path:     opts.Path,
			MaxAge:   int(opts.MaxAge.Seconds()),
			Secure:   opts.Secure,
			SameSite: opts.SameSite,
		},
		{
			Name: SnapshotCookieName,
			// JSON is not cookie-safe, so the snapshot is URI-encoded
			// the way browser-side serializers do it.
			Value:    url.QueryEscape(string(snapshot)),
			Path:     opts.Path,
			MaxAge:   int(opts.MaxAge.Seconds()),
			Secure:   opts.Secure,
			SameSite: opts.SameSite,
		},
	}, nil
}

// SetCookies issues both session cookies to the client.
func SetCookies(w http.ResponseWriter, token string, user any, opts CookieOptions) error {
	cookies, err := Cookies(token, user, opts)
	if err != nil {
		return err
	}
	for _, c := range cookies {
		http.SetCookie(w, c)
	}
	return nil
}

// ClearCookies removes both session cookies from the client.
func ClearCookies(w http.ResponseWriter, opts CookieOptions) {
	opts = opts.normalize()
	for _, name := range []string{TokenCookieName, SnapshotCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     opts.Path,
			MaxAge:   -1,
			Secure:   opts.Secure,
			SameSite: opts.SameSite,
		})
	}
}
