package middleware

import (
	"context"
	"net/http"

	"github.com/gapify/workflow-builder/internal/auth/resolver"
	"github.com/gapify/workflow-builder/internal/logger"
	"github.com/gapify/workflow-builder/internal/observe"
	"github.com/gapify/workflow-builder/internal/store"
)

// unexported, collision-proof context key
type userContextKeyType struct{}

var userKey = userContextKeyType{}

// UserFromContext extracts the authenticated user from context.
func UserFromContext(ctx context.Context) (*store.User, bool) {
	user, ok := ctx.Value(userKey).(*store.User)
	return user, ok
}

type AuthMiddleware struct {
	Resolver resolver.Resolver
	Metrics  *observe.Collector
}

func NewAuthMiddleware(res resolver.Resolver, metrics *observe.Collector) *AuthMiddleware {
	return &AuthMiddleware{Resolver: res, Metrics: metrics}
}

// RequireAuth resolves the request's credentials and rejects it when no
// user is behind them. The bearer token wins over the session cookie;
// an unknown credential is a plain 401, a failing store is a 500.
func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		creds := resolver.FromRequest(r)

		user, err := a.Resolver.Resolve(r.Context(), creds)
		if err != nil {
			logger.Error("identity resolution failed", map[string]any{
				"error": err.Error(),
			})
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		a.record(creds, user)

		if user == nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *AuthMiddleware) record(creds resolver.Credentials, user *store.User) {
	if a.Metrics == nil {
		return
	}

	path := "none"
	switch {
	case creds.BearerToken != "":
		path = "bearer"
	case creds.SessionToken != "":
		path = "cookie"
	}

	outcome := "anonymous"
	if user != nil {
		outcome = "authenticated"
	}

	a.Metrics.RecordResolution(path, outcome)
}
