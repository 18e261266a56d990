package recipes

import (
	"context"
	"errors"
	"io"
	"net/http"

	"meal-planner/internal/api/middleware"
	"meal-planner/internal/core/recipe"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultMaxResults = 15
	maxMaxResults     = 30
)

// Searcher is the slice of the collection service the handlers call.
type Searcher interface {
	SearchRecipes(ctx context.Context, userID string, ingredients []string, maxResults int, onProgress func(recipe.ProgressEvent)) ([]recipe.ScoredRecipe, error)
}

// Handler serves recipe search endpoints.
type Handler struct {
	searcher Searcher
	cache    *recipe.Cache
}

// NewHandler creates a recipes handler.
func NewHandler(searcher Searcher, cache *recipe.Cache) *Handler {
	return &Handler{searcher: searcher, cache: cache}
}

// SearchRequest is the sync search input. UserID is only honored on the
// internal route; the streaming route takes identity from the token.
type SearchRequest struct {
	UserID      string   `json:"user_id"`
	Ingredients []string `json:"ingredients" binding:"required,min=1"`
	MaxResults  int      `json:"max_results"`
}

// RecipeMatch flattens a recipe and its score for responses.
type RecipeMatch struct {
	*recipe.Recipe
	CoverageScore      float64  `json:"coverage_score"`
	MissingIngredients []string `json:"missing_ingredients"`
	Reasoning          string   `json:"reasoning"`
}

// SearchResponse is the sync search output.
type SearchResponse struct {
	Recipes []RecipeMatch `json:"recipes"`
	Total   int           `json:"total"`
}

// Search runs the pipeline synchronously and returns ranked matches.
func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "ingredients list is required",
			"code":  common.ErrCodeInvalidRequest,
		})
		return
	}
	req.MaxResults = clampMaxResults(req.MaxResults)

	scored, err := h.searcher.SearchRecipes(c.Request.Context(), req.UserID, req.Ingredients, req.MaxResults, nil)
	if err != nil {
		h.writeSearchError(c, err)
		return
	}

	c.JSON(http.StatusOK, toResponse(scored))
}

// Get returns one cached recipe by internal ID.
func (h *Handler) Get(c *gin.Context) {
	r := h.cache.Get(c.Param("id"))
	if r == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "recipe not found or expired",
			"code":  common.ErrCodeNotFound,
		})
		return
	}
	c.JSON(http.StatusOK, r)
}

// sseEvent is one queued server-sent event.
type sseEvent struct {
	name string
	data interface{}
}

// StreamSearch runs the pipeline while streaming progress over SSE: zero
// or more progress events, then exactly one result or error event, then
// the stream closes.
func (h *Handler) StreamSearch(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "ingredients list is required",
			"code":  common.ErrCodeInvalidRequest,
		})
		return
	}
	req.MaxResults = clampMaxResults(req.MaxResults)

	events := make(chan sseEvent, 16)
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer close(events)

		// Progress is best-effort: drop rather than block the pipeline
		// behind a slow consumer.
		onProgress := func(ev recipe.ProgressEvent) {
			select {
			case events <- sseEvent{name: "progress", data: ev}:
			case <-done:
			default:
			}
		}

		scored, err := h.searcher.SearchRecipes(c.Request.Context(), userID, req.Ingredients, req.MaxResults, onProgress)

		// The terminal event must arrive unless the client is gone.
		var terminal sseEvent
		if err != nil {
			common.LogWarn("streamed recipe search failed",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			terminal = sseEvent{name: "error", data: gin.H{"error": err.Error()}}
		} else {
			terminal = sseEvent{name: "result", data: toResponse(scored)}
		}
		select {
		case events <- terminal:
		case <-done:
		}
	}()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		ev, ok := <-events
		if !ok {
			return false
		}
		c.SSEvent(ev.name, ev.data)
		return true
	})
}

func (h *Handler) writeSearchError(c *gin.Context, err error) {
	if errors.Is(err, recipe.ErrNoRecipesFound) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "no recipes found from any source",
			"code":  common.ErrCodeServiceUnavailable,
		})
		return
	}
	common.LogError("recipe search failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "recipe search failed",
		"code":  common.ErrCodeInternalError,
	})
}

func toResponse(scored []recipe.ScoredRecipe) SearchResponse {
	matches := make([]RecipeMatch, len(scored))
	for i, s := range scored {
		matches[i] = RecipeMatch{
			Recipe:             s.Recipe,
			CoverageScore:      s.Score.CoverageScore,
			MissingIngredients: s.Score.MissingIngredients,
			Reasoning:          s.Score.Reasoning,
		}
	}
	return SearchResponse{Recipes: matches, Total: len(matches)}
}

func clampMaxResults(n int) int {
	if n <= 0 {
		return defaultMaxResults
	}
	if n > maxMaxResults {
		return maxMaxResults
	}
	return n
}
