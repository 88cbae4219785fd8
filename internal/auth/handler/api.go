package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gapify/workflow-builder/internal/middleware"
	"github.com/gapify/workflow-builder/internal/utils"
)

// Me returns the resolved user behind the request.
func (h *Handler) Me(c *gin.Context) {
	user, ok := middleware.UserFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, user)
}

type createTokenRequest struct {
	Name string `json:"name"`
}

// CreateAPIToken mints a bearer token for the current user. The token
// is returned once and stored server-side for lookup only.
func (h *Handler) CreateAPIToken(c *gin.Context) {
	user, ok := middleware.UserFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createTokenRequest
	_ = c.ShouldBindJSON(&req)

	token := utils.RandomString(24)
	if err := h.users.CreateAPIToken(c.Request.Context(), user.ID, req.Name, token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token})
}
