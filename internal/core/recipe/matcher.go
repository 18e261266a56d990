package recipe

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

const matcherSystemPrompt = `You grade how well a recipe matches the ingredients a user already has. Account for common substitutions (e.g. butter for oil, shallot for onion) when judging coverage.

Respond with a JSON object only, no other text:
{
  "coverage_score": 0.0,
  "missing_ingredients": ["recipe ingredients the user lacks"],
  "reasoning": "one short sentence"
}

coverage_score is between 0 and 1: the fraction of the recipe's ingredients the user can cover.`

// Matcher scores recipes against a user's pantry. The model judges
// substitutions; a deterministic substring match covers model failures.
type Matcher struct {
	ai completer
}

// NewMatcher creates a matcher backed by the given model client.
func NewMatcher(client completer) *Matcher {
	return &Matcher{ai: client}
}

// Score grades one recipe's ingredient list against the user's. A recipe
// with no extracted ingredients scores zero without a model call. Any model
// failure falls back to substring matching; Score never returns an error.
func (m *Matcher) Score(ctx context.Context, userIngredients, recipeIngredients []string) MatchScore {
	if len(recipeIngredients) == 0 {
		return MatchScore{MissingIngredients: []string{}, Reasoning: "no ingredients extracted"}
	}

	user := fmt.Sprintf("User has: %s\nRecipe needs: %s",
		strings.Join(userIngredients, ", "),
		strings.Join(recipeIngredients, ", "),
	)

	var score MatchScore
	if err := m.ai.Structured(ctx, matcherSystemPrompt, user, &score); err != nil {
		common.LogDebug("match scoring fell back to substring matching", zap.Error(err))
		return substringScore(userIngredients, recipeIngredients)
	}

	if score.CoverageScore < 0 {
		score.CoverageScore = 0
	}
	if score.CoverageScore > 1 {
		score.CoverageScore = 1
	}
	if score.MissingIngredients == nil {
		score.MissingIngredients = []string{}
	}
	return score
}

// ScoreBatch scores all recipes concurrently and returns scores keyed by
// recipe ID.
func (m *Matcher) ScoreBatch(ctx context.Context, userIngredients []string, recipes []RecipeIngredients) map[string]MatchScore {
	scores := make(map[string]MatchScore, len(recipes))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, r := range recipes {
		wg.Add(1)
		go func(r RecipeIngredients) {
			defer wg.Done()
			s := m.Score(ctx, userIngredients, r.Ingredients)
			mu.Lock()
			scores[r.ID] = s
			mu.Unlock()
		}(r)
	}
	wg.Wait()

	return scores
}

// substringScore is the deterministic fallback: a recipe ingredient is
// covered when it and a user ingredient contain each other case-insensitively
// in either direction. Coverage is matched/total rounded to two decimals.
func substringScore(userIngredients, recipeIngredients []string) MatchScore {
	lowered := make([]string, len(userIngredients))
	for i, ing := range userIngredients {
		lowered[i] = strings.ToLower(ing)
	}

	matched := 0
	missing := []string{}
	for _, ing := range recipeIngredients {
		needle := strings.ToLower(ing)
		found := false
		for _, have := range lowered {
			if strings.Contains(needle, have) || strings.Contains(have, needle) {
				found = true
				break
			}
		}
		if found {
			matched++
		} else {
			missing = append(missing, ing)
		}
	}

	coverage := math.Round(float64(matched)/float64(len(recipeIngredients))*100) / 100
	return MatchScore{
		CoverageScore:      coverage,
		MissingIngredients: missing,
		Reasoning:          "substring ingredient match",
	}
}
