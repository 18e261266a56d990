package mealplans

import (
	"context"
	"errors"
	"net/http"

	"meal-planner/internal/api/middleware"
	"meal-planner/internal/core/mealplan"
	"meal-planner/internal/core/recipe"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Searcher finds candidate recipes for a plan.
type Searcher interface {
	SearchRecipes(ctx context.Context, userID string, ingredients []string, maxResults int, onProgress func(recipe.ProgressEvent)) ([]recipe.ScoredRecipe, error)
}

// planCandidates is how many ranked recipes the generator chooses from.
const planCandidates = 14

// Handler serves meal plan endpoints.
type Handler struct {
	searcher  Searcher
	generator *mealplan.Generator
	agent     *mealplan.RefinementAgent
	store     *mealplan.Store
	recipes   *recipe.Cache
}

// NewHandler creates a meal plans handler.
func NewHandler(searcher Searcher, generator *mealplan.Generator, agent *mealplan.RefinementAgent, store *mealplan.Store, recipes *recipe.Cache) *Handler {
	return &Handler{
		searcher:  searcher,
		generator: generator,
		agent:     agent,
		store:     store,
		recipes:   recipes,
	}
}

// GenerateRequest drives plan generation from the user's pantry.
type GenerateRequest struct {
	Ingredients []string `json:"ingredients" binding:"required,min=1"`
	Days        []string `json:"days"`
}

// Generate searches for matching recipes and builds a weekly plan.
func (h *Handler) Generate(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "ingredients list is required",
			"code":  common.ErrCodeInvalidRequest,
		})
		return
	}

	scored, err := h.searcher.SearchRecipes(c.Request.Context(), userID, req.Ingredients, planCandidates, nil)
	if err != nil {
		if errors.Is(err, recipe.ErrNoRecipesFound) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "no recipes found to plan with",
				"code":  common.ErrCodeInvalidRequest,
			})
			return
		}
		common.LogError("plan candidate search failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "recipe search failed",
			"code":  common.ErrCodeInternalError,
		})
		return
	}

	plan, err := h.generator.Generate(c.Request.Context(), userID, candidatesOf(scored), req.Days)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": err.Error(),
			"code":  common.ErrCodeInvalidRequest,
		})
		return
	}

	h.store.SavePlan(plan)
	c.JSON(http.StatusCreated, plan)
}

// Get returns one plan by ID.
func (h *Handler) Get(c *gin.Context) {
	plan := h.store.GetPlan(c.Param("id"))
	if plan == nil || plan.UserID != c.GetString(middleware.UserIDKey) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "meal plan not found",
			"code":  common.ErrCodeNotFound,
		})
		return
	}
	c.JSON(http.StatusOK, plan)
}

// Latest returns the caller's most recent plan.
func (h *Handler) Latest(c *gin.Context) {
	plan := h.store.LatestPlan(c.GetString(middleware.UserIDKey))
	if plan == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "no meal plans yet",
			"code":  common.ErrCodeNotFound,
		})
		return
	}
	c.JSON(http.StatusOK, plan)
}

// RefineRequest is one chat turn against a plan.
type RefineRequest struct {
	Message string `json:"message" binding:"required"`
}

// Refine applies a chat-driven adjustment to a plan.
func (h *Handler) Refine(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	plan := h.store.GetPlan(c.Param("id"))
	if plan == nil || plan.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "meal plan not found",
			"code":  common.ErrCodeNotFound,
		})
		return
	}

	var req RefineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "message is required",
			"code":  common.ErrCodeInvalidRequest,
		})
		return
	}

	session := h.store.SessionFor(plan.ID, userID)
	candidates := h.cachedCandidates(plan)

	decision := h.agent.Refine(c.Request.Context(), plan, candidates, session.Messages, req.Message)
	if decision.Action == "swap" {
		plan = h.store.UpdatePlan(plan.ID, mealplan.Apply(decision, plan.Slots, candidates))
	}

	h.store.AppendMessage(session.ID, "user", req.Message)
	h.store.AppendMessage(session.ID, "assistant", decision.Reply)

	c.JSON(http.StatusOK, gin.H{
		"plan":   plan,
		"reply":  decision.Reply,
		"action": decision.Action,
	})
}

// cachedCandidates collects the plan's recipes that are still cached, so
// swaps between days stay expressible after the original search expires.
func (h *Handler) cachedCandidates(plan *mealplan.MealPlan) []mealplan.Candidate {
	var out []mealplan.Candidate
	for _, s := range plan.Slots {
		r := h.recipes.Get(s.RecipeID)
		if r == nil {
			continue
		}
		out = append(out, mealplan.Candidate{
			RecipeID:     r.ID,
			Title:        r.Title,
			URL:          r.URL,
			ThumbnailURL: r.ThumbnailURL,
		})
	}
	return out
}

func candidatesOf(scored []recipe.ScoredRecipe) []mealplan.Candidate {
	out := make([]mealplan.Candidate, len(scored))
	for i, s := range scored {
		out[i] = mealplan.Candidate{
			RecipeID:     s.Recipe.ID,
			Title:        s.Recipe.Title,
			URL:          s.Recipe.URL,
			ThumbnailURL: s.Recipe.ThumbnailURL,
			Coverage:     s.Score.CoverageScore,
		}
	}
	return out
}
