package recipe

import (
	"time"

	"meal-planner/internal/core/source"
)

// Recipe is the durable unit of the recipe cache. (Source, SourceID)
// uniquely identifies a recipe; identity fields are never mutated after
// creation.
type Recipe struct {
	ID                   string        `json:"id"`
	Source               source.Source `json:"source"`
	SourceID             string        `json:"source_id"`
	URL                  string        `json:"url"`
	ThumbnailURL         string        `json:"thumbnail_url"`
	Title                string        `json:"title"`
	CreatorName          string        `json:"creator_name"`
	CreatorID            string        `json:"creator_id"`
	ExtractedIngredients []string      `json:"extracted_ingredients"`
	RawDescription       string        `json:"raw_description"`
	Duration             string        `json:"duration,omitempty"`
	PostedAt             time.Time     `json:"posted_at"`
	CachedAt             time.Time     `json:"cached_at"`
	CacheExpiresAt       time.Time     `json:"cache_expires_at"`
}

// MatchScore grades one recipe against a user's ingredients.
type MatchScore struct {
	CoverageScore      float64  `json:"coverage_score"`
	MissingIngredients []string `json:"missing_ingredients"`
	Reasoning          string   `json:"reasoning"`
}

// ScoredRecipe pairs a recipe with its match score for one search.
type ScoredRecipe struct {
	Recipe *Recipe
	Score  MatchScore
}

// ProgressEvent is an ordered notification emitted at pipeline phase
// boundaries.
type ProgressEvent struct {
	Step       int    `json:"step"`
	TotalSteps int    `json:"total_steps"`
	Phase      string `json:"phase"`
	Message    string `json:"message"`
}

// SearchQueries is the query generator's output.
type SearchQueries struct {
	DirectQueries   []string `json:"direct_queries"`
	DishSuggestions []string `json:"dish_suggestions"`
}

// ParsedIngredients is the description parser's output.
type ParsedIngredients struct {
	Ingredients []string `json:"ingredients"`
	Confidence  float64  `json:"confidence"`
}

// RecipeIngredients keys an ingredient list for batch scoring.
type RecipeIngredients struct {
	ID          string
	Ingredients []string
}
