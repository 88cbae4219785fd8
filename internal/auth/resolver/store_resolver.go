package resolver

import (
	"context"
	"time"

	"github.com/gapify/workflow-builder/internal/observe"
	"github.com/gapify/workflow-builder/internal/session"
	"github.com/gapify/workflow-builder/internal/store"
)

// strategy is one credential path. It reports whether it claimed the
// request; a claimed request is final even when it resolves to no user,
// so a bearer token is never downgraded to the cookie path.
type strategy func(ctx context.Context, creds Credentials) (*store.User, bool, error)

// StoreResolver resolves credentials against current store state on
// every call. Nothing is cached: sessions expire and tokens get revoked
// between requests.
type StoreResolver struct {
	users    store.Store
	sessions session.Store
	sink     observe.Sink

	strategies []strategy
	now        func() time.Time
}

func NewStoreResolver(users store.Store, sessions session.Store, sink observe.Sink) *StoreResolver {
	if sink == nil {
		sink = observe.NopSink{}
	}
	r := &StoreResolver{
		users:    users,
		sessions: sessions,
		sink:     sink,
		now:      time.Now,
	}
	// Priority order: service-to-service bearer tokens beat browser
	// sessions.
	r.strategies = []strategy{r.byAPIToken, r.bySession}
	return r
}

func (r *StoreResolver) Resolve(ctx context.Context, creds Credentials) (*store.User, error) {
	for _, resolve := range r.strategies {
		user, claimed, err := resolve(ctx, creds)
		if err != nil {
			return nil, err
		}
		if !claimed {
			continue
		}
		if user != nil {
			r.identify(user.ID)
		}
		return user, nil
	}
	return nil, nil
}

func (r *StoreResolver) byAPIToken(ctx context.Context, creds Credentials) (*store.User, bool, error) {
	if creds.BearerToken == "" {
		return nil, false, nil
	}
	user, err := r.users.FindUserByAPIToken(ctx, creds.BearerToken)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (r *StoreResolver) bySession(ctx context.Context, creds Credentials) (*store.User, bool, error) {
	if creds.SessionToken == "" {
		return nil, false, nil
	}

	sess, err := r.sessions.FindByToken(ctx, creds.SessionToken)
	if err != nil {
		return nil, false, err
	}
	if sess == nil || sess.Expired(r.now()) {
		return nil, true, nil
	}

	// A session may outlive its user; tolerate the dangling reference.
	user, err := r.users.FindUserByID(ctx, sess.UserID)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// identify reports the resolved user to the observability sink.
// Fire-and-forget: a slow or panicking sink must not affect resolution.
func (r *StoreResolver) identify(userID string) {
	go func() {
		defer func() { _ = recover() }()
		r.sink.Identify(userID)
	}()
}

// compile-time interface check
var _ Resolver = (*StoreResolver)(nil)
