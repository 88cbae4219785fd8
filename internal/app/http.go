package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gapify/workflow-builder/internal/auth/credentials"
	"github.com/gapify/workflow-builder/internal/auth/federated"
	"github.com/gapify/workflow-builder/internal/auth/handler"
	"github.com/gapify/workflow-builder/internal/auth/provider"
	"github.com/gapify/workflow-builder/internal/auth/provider/google"
	"github.com/gapify/workflow-builder/internal/auth/provision"
	"github.com/gapify/workflow-builder/internal/auth/resolver"
	"github.com/gapify/workflow-builder/internal/config"
	"github.com/gapify/workflow-builder/internal/logger"
	"github.com/gapify/workflow-builder/internal/middleware"
	"github.com/gapify/workflow-builder/internal/observe"
	"github.com/gapify/workflow-builder/internal/session"
	"github.com/gapify/workflow-builder/internal/store"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	metrics := observe.NewCollector()

	userStore := store.NewPostgres(infra.DB)
	sessionStore := session.NewRedisStore(infra.Redis.Client)
	provisioner := provision.NewService(userStore)

	platformClient := federated.NewClient(cfg.PlatformAPIURL)
	exchange := federated.NewExchange(
		platformClient,
		provisioner,
		userStore,
		sessionStore,
		federated.Config{
			Domain:     platformClient.Domain(),
			SessionTTL: cfg.SessionTTL,
		},
	)

	identityResolver := resolver.NewStoreResolver(userStore, sessionStore, metrics)

	var providers []provider.OAuthProvider
	if cfg.GoogleClientID != "" {
		googleProvider, err := google.New(
			ctx,
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
		)
		if err != nil {
			return nil, nil, err
		}
		providers = append(providers, googleProvider)
	}
	registry := provider.NewRegistry(providers...)

	credentialService := credentials.NewService(infra.DB, provisioner)

	authHandler := handler.NewHandler(
		exchange,
		registry,
		sessionStore,
		userStore,
		provisioner,
		credentialService,
		metrics,
		handler.Config{
			CookieOptions: session.CookieOptions{
				Secure:   cfg.CookieSecure,
				SameSite: http.SameSiteLaxMode,
				MaxAge:   cfg.SessionTTL,
			},
			SessionTTL:    cfg.SessionTTL,
			DefaultLocale: cfg.DefaultLocale,
		},
	)

	authMiddleware := middleware.NewAuthMiddleware(identityResolver, metrics)
	loginLimiter := middleware.NewRateLimiter(30, 10)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	// ----------------------------
	// Public Routes
	// ----------------------------

	authHandler.RegisterRoutes(router, middleware.GinRateLimit(loginLimiter))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	api := router.Group("/api")
	api.Use(middleware.GinRequireAuth(authMiddleware))

	api.GET("/me", authHandler.Me)
	api.POST("/tokens", authHandler.CreateAPIToken)

	logger.Info("http routes registered", map[string]any{
		"routes": len(router.Routes()),
	})

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		loginLimiter.Stop()
		return infra.DB.Close()
	}, nil
}
