package auth

import (
	"net/http"

	infraauth "meal-planner/internal/infrastructure/auth"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler issues bearer tokens. There is no user database; any non-empty
// user ID gets a token, which is enough for a single-tenant deployment.
type Handler struct {
	manager *infraauth.Manager
}

// NewHandler creates an auth handler.
func NewHandler(manager *infraauth.Manager) *Handler {
	return &Handler{manager: manager}
}

// TokenRequest identifies the user to issue a token for.
type TokenRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// Token issues a signed bearer token.
func (h *Handler) Token(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "user_id is required",
			"code":  common.ErrCodeInvalidRequest,
		})
		return
	}

	token, err := h.manager.CreateToken(req.UserID)
	if err != nil {
		common.LogError("token signing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to issue token",
			"code":  common.ErrCodeInternalError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
	})
}
