package recipe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"meal-planner/internal/core/ai"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

const maxFallbackQueries = 5

// completer is the slice of the AI client the recipe package depends on.
type completer interface {
	Structured(ctx context.Context, system, user string, out interface{}) error
}

const queryGenSystemPrompt = `You are a culinary search assistant. Given a list of ingredients the user has on hand, produce search queries for finding cooking videos and posts.

Respond with a JSON object only, no other text:
{
  "direct_queries": ["ingredient-combination recipe queries, most promising first"],
  "dish_suggestions": ["names of specific dishes these ingredients could make"]
}

Keep each list to at most 5 entries. Queries must be short, natural search phrases.`

// QueryGenerator turns a user's ingredient list into platform search
// queries, with a deterministic fallback when the model declines.
type QueryGenerator struct {
	ai completer
}

// NewQueryGenerator creates a query generator backed by the given model
// client.
func NewQueryGenerator(client completer) *QueryGenerator {
	return &QueryGenerator{ai: client}
}

// Generate produces search queries for the ingredients. An empty ingredient
// list yields empty queries without a model call. A model decline or an
// unusable response falls back to mechanical ingredient-combination
// queries; transport failures propagate.
func (g *QueryGenerator) Generate(ctx context.Context, ingredients []string) (SearchQueries, error) {
	if len(ingredients) == 0 {
		return SearchQueries{}, nil
	}

	user := fmt.Sprintf("Ingredients on hand: %s", strings.Join(ingredients, ", "))

	var queries SearchQueries
	err := g.ai.Structured(ctx, queryGenSystemPrompt, user, &queries)
	if err != nil {
		if errors.Is(err, ai.ErrDeclined) {
			common.LogWarn("query generation declined, using fallback",
				zap.Int("ingredients", len(ingredients)),
			)
			return fallbackQueries(ingredients), nil
		}
		return SearchQueries{}, err
	}

	if len(queries.DirectQueries) == 0 && len(queries.DishSuggestions) == 0 {
		return fallbackQueries(ingredients), nil
	}

	common.LogDebug("search queries generated",
		zap.Int("direct", len(queries.DirectQueries)),
		zap.Int("dishes", len(queries.DishSuggestions)),
	)
	return queries, nil
}

// fallbackQueries builds mechanical combination queries: the first two
// ingredients, the first three, then one query per ingredient, capped at
// five. No dish suggestions are produced.
func fallbackQueries(ingredients []string) SearchQueries {
	var queries []string
	if len(ingredients) >= 2 {
		queries = append(queries, strings.Join(ingredients[:2], " ")+" recipe")
	}
	if len(ingredients) >= 3 {
		queries = append(queries, strings.Join(ingredients[:3], " ")+" recipe")
	}
	for _, ing := range ingredients {
		if len(queries) >= maxFallbackQueries {
			break
		}
		queries = append(queries, ing+" recipe")
	}
	if len(queries) > maxFallbackQueries {
		queries = queries[:maxFallbackQueries]
	}
	return SearchQueries{DirectQueries: queries}
}
