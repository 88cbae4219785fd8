package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gapify/workflow-builder/internal/auth/credentials"
	"github.com/gapify/workflow-builder/internal/auth/federated"
	"github.com/gapify/workflow-builder/internal/auth/provider"
	"github.com/gapify/workflow-builder/internal/auth/provision"
	"github.com/gapify/workflow-builder/internal/logger"
	"github.com/gapify/workflow-builder/internal/observe"
	"github.com/gapify/workflow-builder/internal/session"
	"github.com/gapify/workflow-builder/internal/store"
)

const landingBasePath = "/workflows"

// Exchanger is the federated login entry point the handler depends on.
type Exchanger interface {
	Exchange(ctx context.Context, opaqueToken string) (*federated.Result, error)
}

type Config struct {
	CookieOptions session.CookieOptions
	SessionTTL    time.Duration
	DefaultLocale string
}

type Handler struct {
	exchange          Exchanger
	providers         *provider.Registry
	sessionStore      session.Store
	users             store.Store
	provisioner       *provision.Service
	credentialService *credentials.Service
	metrics           *observe.Collector
	cfg               Config
}

func NewHandler(
	exchange Exchanger,
	registry *provider.Registry,
	sessionStore session.Store,
	users store.Store,
	provisioner *provision.Service,
	credentialService *credentials.Service,
	metrics *observe.Collector,
	cfg Config,
) *Handler {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	return &Handler{
		exchange:          exchange,
		providers:         registry,
		sessionStore:      sessionStore,
		users:             users,
		provisioner:       provisioner,
		credentialService: credentialService,
		metrics:           metrics,
		cfg:               cfg,
	}
}

// RegisterRoutes mounts the public auth routes. limited wraps the
// endpoints that accept guessable credentials.
func (h *Handler) RegisterRoutes(r *gin.Engine, limited gin.HandlerFunc) {
	r.GET("/", h.Landing)
	r.GET("/auth/federated", limited, h.FederatedExchange)
	r.POST("/auth/login", limited, h.Login)
	r.POST("/auth/register", h.Register)
	r.POST("/auth/logout", h.Logout)
	r.GET("/oauth/login/:provider", h.oauthLogin)
	r.GET("/oauth/callback/:provider", h.oauthCallback)
}

// FederatedExchange trades a support platform token for a session and
// returns it as JSON.
func (h *Handler) FederatedExchange(c *gin.Context) {
	token := c.Query("auth_token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing auth_token in query"})
		return
	}

	result, err := h.exchange.Exchange(c.Request.Context(), token)
	if err != nil {
		h.exchangeError(c, err)
		return
	}

	h.recordExchange("success")
	c.JSON(http.StatusOK, gin.H{
		"sessionToken": result.SessionToken,
		"user":         result.User,
	})
}

// Landing is the redirect entry point. With an auth_token it performs
// the exchange, sets the session cookies, and redirects to the
// locale-aware landing path. A failed exchange surfaces the error
// instead of degrading to an anonymous redirect.
func (h *Handler) Landing(c *gin.Context) {
	token := c.Query("auth_token")
	if token == "" {
		c.Redirect(http.StatusFound, h.landingPath(c.Query("locale")))
		return
	}

	result, err := h.exchange.Exchange(c.Request.Context(), token)
	if err != nil {
		h.exchangeError(c, err)
		return
	}
	h.recordExchange("success")

	if err := session.SetCookies(c.Writer, result.SessionToken, result.User, h.cookieOptions()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue session cookies"})
		return
	}

	c.Redirect(http.StatusFound, h.landingPath(c.Query("locale")))
}

func (h *Handler) Logout(c *gin.Context) {
	// Delete the session from the store (best-effort), then clear both
	// cookies. Idempotent.
	if cookie, err := c.Request.Cookie(session.TokenCookieName); err == nil && cookie.Value != "" {
		_ = h.sessionStore.Delete(c.Request.Context(), cookie.Value)
	}

	session.ClearCookies(c.Writer, h.cookieOptions())
	c.Status(http.StatusNoContent)
}

// exchangeError maps the exchange error taxonomy onto HTTP statuses.
func (h *Handler) exchangeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	outcome := "error"
	message := "internal server error"

	switch {
	case errors.Is(err, federated.ErrInvalidToken):
		status, outcome, message = http.StatusBadRequest, "invalid_token", "invalid auth_token"
	case errors.Is(err, federated.ErrVerificationFailed):
		status, outcome, message = http.StatusUnauthorized, "verification_failed", "failed to verify token"
	case errors.Is(err, federated.ErrInconsistentState):
		// Store or logic defect; keep the 500 but make it loud.
		outcome = "inconsistent_state"
	}

	logger.Error("federated exchange failed", map[string]any{
		"outcome": outcome,
		"error":   err.Error(),
	})
	h.recordExchange(outcome)

	c.JSON(status, gin.H{"error": message})
}

func (h *Handler) recordExchange(outcome string) {
	if h.metrics != nil {
		h.metrics.RecordExchange(outcome)
	}
}

func (h *Handler) landingPath(locale string) string {
	if locale == "" || locale == h.cfg.DefaultLocale {
		return landingBasePath
	}
	return fmt.Sprintf("/%s%s", locale, landingBasePath)
}

func (h *Handler) cookieOptions() session.CookieOptions {
	opts := h.cfg.CookieOptions
	if opts.MaxAge == 0 {
		opts.MaxAge = h.cfg.SessionTTL
	}
	return opts
}

// issueSession creates and persists a fresh session for the user and
// sets both cookies.
func (h *Handler) issueSession(c *gin.Context, userID string) error {
	user, err := h.users.FindUserByID(c.Request.Context(), userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("no user %s for new session", userID)
	}

	token, err := session.GenerateToken()
	if err != nil {
		return err
	}

	if err := h.sessionStore.Upsert(c.Request.Context(), session.Session{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(h.cfg.SessionTTL),
	}); err != nil {
		return err
	}

	return session.SetCookies(c.Writer, token, user, h.cookieOptions())
}
