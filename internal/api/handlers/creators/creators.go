package creators

import (
	"net/http"

	"meal-planner/internal/api/middleware"
	"meal-planner/internal/core/creator"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// Handler serves the preferred-creator registry.
type Handler struct {
	store *creator.Store
}

// NewHandler creates a creators handler.
func NewHandler(store *creator.Store) *Handler {
	return &Handler{store: store}
}

// CreateRequest registers a creator by profile URL.
type CreateRequest struct {
	URL string `json:"url" binding:"required"`
}

// Create parses the profile URL and registers the creator for the caller.
// Registering the same creator twice returns the existing entry.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "url is required",
			"code":  common.ErrCodeInvalidRequest,
		})
		return
	}

	parsed, err := creator.ParseCreatorURL(req.URL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
			"code":  common.ErrCodeInvalidRequest,
		})
		return
	}

	userID := c.GetString(middleware.UserIDKey)
	created := h.store.Add(userID, parsed.Source, parsed.ID, parsed.Name, req.URL)
	c.JSON(http.StatusCreated, created)
}

// List returns the caller's creators.
func (h *Handler) List(c *gin.Context) {
	creators := h.store.ListByUser(c.GetString(middleware.UserIDKey))
	c.JSON(http.StatusOK, gin.H{"creators": creators, "total": len(creators)})
}

// Delete removes one of the caller's creators.
func (h *Handler) Delete(c *gin.Context) {
	if !h.store.Delete(c.GetString(middleware.UserIDKey), c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "creator not found",
			"code":  common.ErrCodeNotFound,
		})
		return
	}
	c.Status(http.StatusNoContent)
}
