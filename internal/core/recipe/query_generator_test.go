package recipe

import (
	"context"
	"errors"
	"testing"

	"meal-planner/internal/core/ai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateEmptyIngredients(t *testing.T) {
	fake := &fakeCompleter{fn: respondWith(`{}`)}
	gen := NewQueryGenerator(fake)

	queries, err := gen.Generate(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, queries.DirectQueries)
	assert.Empty(t, queries.DishSuggestions)
	assert.Equal(t, 0, fake.callCount(), "no model call for empty input")
}

func TestGenerateSuccess(t *testing.T) {
	fake := &fakeCompleter{fn: respondWith(`{
		"direct_queries": ["chicken rice recipe"],
		"dish_suggestions": ["chicken fried rice"]
	}`)}
	gen := NewQueryGenerator(fake)

	queries, err := gen.Generate(context.Background(), []string{"chicken", "rice"})
	require.NoError(t, err)
	assert.Equal(t, []string{"chicken rice recipe"}, queries.DirectQueries)
	assert.Equal(t, []string{"chicken fried rice"}, queries.DishSuggestions)
}

func TestGenerateDeclineFallsBack(t *testing.T) {
	fake := &fakeCompleter{fn: func(_, _ string, _ interface{}) error {
		return ai.ErrDeclined
	}}
	gen := NewQueryGenerator(fake)

	queries, err := gen.Generate(context.Background(), []string{"chicken", "rice", "egg", "onion"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"chicken rice recipe",
		"chicken rice egg recipe",
		"chicken recipe",
		"rice recipe",
		"egg recipe",
	}, queries.DirectQueries)
	assert.Empty(t, queries.DishSuggestions)
}

func TestGenerateFallbackSingleIngredient(t *testing.T) {
	fake := &fakeCompleter{fn: func(_, _ string, _ interface{}) error {
		return ai.ErrDeclined
	}}
	gen := NewQueryGenerator(fake)

	queries, err := gen.Generate(context.Background(), []string{"tofu"})
	require.NoError(t, err)
	assert.Equal(t, []string{"tofu recipe"}, queries.DirectQueries)
}

func TestGenerateEmptyModelOutputFallsBack(t *testing.T) {
	fake := &fakeCompleter{fn: respondWith(`{"direct_queries": [], "dish_suggestions": []}`)}
	gen := NewQueryGenerator(fake)

	queries, err := gen.Generate(context.Background(), []string{"tofu"})
	require.NoError(t, err)
	assert.NotEmpty(t, queries.DirectQueries)
}

func TestGenerateTransportErrorPropagates(t *testing.T) {
	transportErr := errors.New("connection refused")
	fake := &fakeCompleter{fn: func(_, _ string, _ interface{}) error {
		return transportErr
	}}
	gen := NewQueryGenerator(fake)

	_, err := gen.Generate(context.Background(), []string{"tofu"})
	require.Error(t, err)
	assert.ErrorIs(t, err, transportErr)
}
