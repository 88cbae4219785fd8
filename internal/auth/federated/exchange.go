// Package federated exchanges a support platform token for a local
// session, provisioning first-time users on the way.
package federated

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gapify/workflow-builder/internal/auth/provision"
	"github.com/gapify/workflow-builder/internal/logger"
	"github.com/gapify/workflow-builder/internal/session"
	"github.com/gapify/workflow-builder/internal/store"
)

var (
	// ErrInvalidToken means the opaque token was malformed before we
	// ever reached the platform. User-correctable.
	ErrInvalidToken = errors.New("federated: invalid token")
	// ErrVerificationFailed means the platform rejected the token or
	// was unreachable.
	ErrVerificationFailed = errors.New("federated: token verification failed")
	// ErrInconsistentState means an account provisioned moments ago
	// could not be loaded back. Store or logic defect.
	ErrInconsistentState = errors.New("federated: provisioned account missing")
)

// Result is a successful exchange: a persisted session token and the
// user it belongs to.
type Result struct {
	SessionToken string
	User         *store.User
}

type Config struct {
	// Domain is the platform domain used in derived emails.
	Domain string
	// SessionTTL bounds issued sessions. Defaults to 24h.
	SessionTTL time.Duration
}

// Exchange validates platform tokens and turns them into sessions.
type Exchange struct {
	validator   TokenValidator
	provisioner *provision.Service
	users       store.Store
	sessions    session.Store
	cfg         Config

	now func() time.Time
}

func NewExchange(
	validator TokenValidator,
	provisioner *provision.Service,
	users store.Store,
	sessions session.Store,
	cfg Config,
) *Exchange {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	return &Exchange{
		validator:   validator,
		provisioner: provisioner,
		users:       users,
		sessions:    sessions,
		cfg:         cfg,
		now:         time.Now,
	}
}

// DerivedEmail maps an external account id to its local user email.
// Pure function: the same account id always lands on the same user.
func DerivedEmail(accountID, domain string) string {
	return fmt.Sprintf("federated-account-%s@%s", accountID, domain)
}

// Exchange runs the full federated login: decode, verify, provision
// every attached account, select the primary one, and issue a session.
// Errors short-circuit without issuing a session; accounts already
// provisioned for the batch stay committed (at-least-once semantics).
func (e *Exchange) Exchange(ctx context.Context, opaqueToken string) (*Result, error) {
	if err := decodeAccessToken(opaqueToken); err != nil {
		return nil, err
	}

	verification, err := e.validator.ValidateToken(ctx, opaqueToken)
	if err != nil {
		return nil, err
	}

	// Phase one: provision every attached account. No rollback on a
	// later failure; provisioning is idempotent so a retry converges.
	for _, account := range verification.Accounts {
		email := DerivedEmail(account.ID, e.cfg.Domain)
		if _, err := e.provisioner.EnsureUser(ctx, account.Name, email); err != nil {
			return nil, fmt.Errorf("federated: provisioning account %s: %w", account.ID, err)
		}
	}

	// Phase two: select the current account, reading only committed
	// state, keyed by the platform's designated primary id.
	primaryEmail := DerivedEmail(verification.PrimaryAccountID, e.cfg.Domain)
	user, err := e.users.FindUserByEmail(ctx, primaryEmail)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: no user for %s", ErrInconsistentState, primaryEmail)
	}

	token, err := session.GenerateToken()
	if err != nil {
		return nil, err
	}

	if err := e.sessions.Upsert(ctx, session.Session{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: e.now().Add(e.cfg.SessionTTL),
	}); err != nil {
		return nil, err
	}

	logger.Info("federated login", map[string]any{
		"user_id":  user.ID,
		"accounts": len(verification.Accounts),
	})

	return &Result{SessionToken: token, User: user}, nil
}

// decodeAccessToken checks the opaque token's inner shape: base64 JSON
// carrying a non-empty "access-token" field. The decoded value is shape
// checked and then dropped; the platform verifies the outer token.
func decodeAccessToken(opaqueToken string) error {
	raw, err := base64.StdEncoding.DecodeString(opaqueToken)
	if err != nil {
		return fmt.Errorf("%w: not base64: %v", ErrInvalidToken, err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("%w: not JSON: %v", ErrInvalidToken, err)
	}

	accessToken, _ := payload["access-token"].(string)
	if accessToken == "" {
		return fmt.Errorf("%w: missing access-token field", ErrInvalidToken)
	}

	return nil
}
