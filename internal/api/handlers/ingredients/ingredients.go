package ingredients

import (
	"context"
	"errors"
	"net/http"

	"meal-planner/internal/api/middleware"
	"meal-planner/internal/core/ingredient"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Parser is the slice of the ingredient parser the handlers call.
type Parser interface {
	Parse(ctx context.Context, text string) ([]ingredient.Ingredient, error)
}

// Handler serves ingredient parsing and session endpoints.
type Handler struct {
	parser   Parser
	sessions *ingredient.SessionStore
}

// NewHandler creates an ingredients handler.
func NewHandler(parser Parser, sessions *ingredient.SessionStore) *Handler {
	return &Handler{parser: parser, sessions: sessions}
}

// ParseRequest is the free-text parse input.
type ParseRequest struct {
	Text string `json:"text" binding:"required"`
}

// Parse extracts ingredients from free text and opens a new session.
func (h *Handler) Parse(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "text is required",
			"code":  common.ErrCodeInvalidRequest,
		})
		return
	}

	parsed, err := h.parser.Parse(c.Request.Context(), req.Text)
	if err != nil {
		if errors.Is(err, ingredient.ErrUnparseable) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "no ingredients recognized in text",
				"code":  common.ErrCodeInvalidRequest,
			})
			return
		}
		common.LogError("ingredient parsing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "ingredient parsing failed",
			"code":  common.ErrCodeInternalError,
		})
		return
	}

	session := h.sessions.Create(userID, req.Text, parsed)
	c.JSON(http.StatusCreated, session)
}

// GetSession returns one session by ID.
func (h *Handler) GetSession(c *gin.Context) {
	session := h.sessions.Get(c.Param("id"))
	if session == nil || session.UserID != c.GetString(middleware.UserIDKey) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "session not found",
			"code":  common.ErrCodeNotFound,
		})
		return
	}
	c.JSON(http.StatusOK, session)
}

// Latest returns the caller's most recent session.
func (h *Handler) Latest(c *gin.Context) {
	session := h.sessions.Latest(c.GetString(middleware.UserIDKey))
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "no sessions yet",
			"code":  common.ErrCodeNotFound,
		})
		return
	}
	c.JSON(http.StatusOK, session)
}

// ItemRequest adds one ingredient to a session.
type ItemRequest struct {
	Name     string `json:"name" binding:"required"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
}

// AddItem appends an ingredient to a session.
func (h *Handler) AddItem(c *gin.Context) {
	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "name is required",
			"code":  common.ErrCodeInvalidRequest,
		})
		return
	}

	ok := h.sessions.AddItem(c.GetString(middleware.UserIDKey), c.Param("id"), ingredient.Ingredient{
		Name:       req.Name,
		Quantity:   req.Quantity,
		Unit:       req.Unit,
		Confidence: 1,
	})
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "session not found",
			"code":  common.ErrCodeNotFound,
		})
		return
	}
	c.JSON(http.StatusOK, h.sessions.Get(c.Param("id")))
}

// RemoveItem deletes the named ingredient from a session.
func (h *Handler) RemoveItem(c *gin.Context) {
	ok := h.sessions.RemoveItem(c.GetString(middleware.UserIDKey), c.Param("id"), c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "session or ingredient not found",
			"code":  common.ErrCodeNotFound,
		})
		return
	}
	c.JSON(http.StatusOK, h.sessions.Get(c.Param("id")))
}

// StatusRequest updates one item's availability.
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus marks an ingredient available or used.
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "status is required",
			"code":  common.ErrCodeInvalidRequest,
		})
		return
	}

	ok := h.sessions.UpdateStatus(c.GetString(middleware.UserIDKey), c.Param("id"), c.Param("name"), req.Status)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown session, ingredient, or status",
			"code":  common.ErrCodeInvalidRequest,
		})
		return
	}
	c.JSON(http.StatusOK, h.sessions.Get(c.Param("id")))
}
