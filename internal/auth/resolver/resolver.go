// Package resolver decides which user, if any, is behind a request.
package resolver

import (
	"context"
	"net/http"
	"strings"

	"github.com/gapify/workflow-builder/internal/session"
	"github.com/gapify/workflow-builder/internal/store"
)

// Credentials are the proofs extracted from an incoming request. Either
// field may be empty.
type Credentials struct {
	BearerToken  string // from the Authorization header
	SessionToken string // from the session cookie
}

// FromRequest pulls credentials out of the request without validating
// them.
func FromRequest(r *http.Request) Credentials {
	var creds Credentials

	header := r.Header.Get("Authorization")
	if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && parts[0] == "Bearer" {
		creds.BearerToken = parts[1]
	}

	if cookie, err := r.Cookie(session.TokenCookieName); err == nil {
		creds.SessionToken = cookie.Value
	}

	return creds
}

// Resolver maps request credentials to a user.
// Resolve returns (nil, nil) for "not authenticated"; an error always
// means the store itself failed, never a bad credential.
type Resolver interface {
	Resolve(ctx context.Context, creds Credentials) (*store.User, error)
}
