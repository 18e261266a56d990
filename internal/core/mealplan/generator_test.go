package mealplan

import (
	"context"
	"testing"

	"meal-planner/internal/core/ai"
	"meal-planner/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	response string
	err      error
}

func (s *stubCompleter) Structured(_ context.Context, _, _ string, out interface{}) error {
	if s.err != nil {
		return s.err
	}
	return common.ParseJSON(s.response, out)
}

func testCandidates() []Candidate {
	return []Candidate{
		{RecipeID: "r1", Title: "Chicken Rice", Coverage: 0.9},
		{RecipeID: "r2", Title: "Fried Noodles", Coverage: 0.7},
		{RecipeID: "r3", Title: "Veggie Soup", Coverage: 0.5},
	}
}

func TestGenerateFromModel(t *testing.T) {
	gen := NewGenerator(&stubCompleter{response: `{
		"assignments": [
			{"day": "tuesday", "recipe_id": "r2"},
			{"day": "monday", "recipe_id": "r1"}
		]
	}`})

	plan, err := gen.Generate(context.Background(), "u1", testCandidates(), []string{"monday", "tuesday"})
	require.NoError(t, err)
	require.Len(t, plan.Slots, 2)
	assert.Equal(t, "monday", plan.Slots[0].Day, "slots come back in week order")
	assert.Equal(t, "Chicken Rice", plan.Slots[0].RecipeTitle)
	assert.Equal(t, "tuesday", plan.Slots[1].Day)
	assert.Equal(t, "u1", plan.UserID)
}

func TestGenerateDeclineFallsBackToRoundRobin(t *testing.T) {
	gen := NewGenerator(&stubCompleter{err: ai.ErrDeclined})

	plan, err := gen.Generate(context.Background(), "u1", testCandidates()[:2], []string{"monday", "tuesday", "wednesday"})
	require.NoError(t, err)
	require.Len(t, plan.Slots, 3)
	assert.Equal(t, "r1", plan.Slots[0].RecipeID)
	assert.Equal(t, "r2", plan.Slots[1].RecipeID)
	assert.Equal(t, "r1", plan.Slots[2].RecipeID, "candidates cycle when days outnumber them")
}

func TestGenerateInvalidAssignmentFallsBack(t *testing.T) {
	gen := NewGenerator(&stubCompleter{response: `{
		"assignments": [{"day": "monday", "recipe_id": "not-a-candidate"}]
	}`})

	plan, err := gen.Generate(context.Background(), "u1", testCandidates(), []string{"monday"})
	require.NoError(t, err)
	require.Len(t, plan.Slots, 1)
	assert.Equal(t, "r1", plan.Slots[0].RecipeID)
}

func TestGenerateNoCandidates(t *testing.T) {
	gen := NewGenerator(&stubCompleter{response: `{}`})

	_, err := gen.Generate(context.Background(), "u1", nil, nil)
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestGenerateDefaultsToFullWeek(t *testing.T) {
	gen := NewGenerator(&stubCompleter{err: ai.ErrDeclined})

	plan, err := gen.Generate(context.Background(), "u1", testCandidates(), []string{"someday", ""})
	require.NoError(t, err)
	require.Len(t, plan.Slots, 7, "invalid day names fall back to the full week")
	assert.Equal(t, "monday", plan.Slots[0].Day)
	assert.Equal(t, "sunday", plan.Slots[6].Day)
}

func TestRefinementApplySwap(t *testing.T) {
	slots := []MealSlot{
		{Day: "monday", RecipeID: "r1", RecipeTitle: "Chicken Rice"},
		{Day: "tuesday", RecipeID: "r2", RecipeTitle: "Fried Noodles"},
	}

	updated := Apply(Decision{Action: "swap", Day: "monday", RecipeID: "r3"}, slots, testCandidates())
	assert.Equal(t, "r3", updated[0].RecipeID)
	assert.Equal(t, "Veggie Soup", updated[0].RecipeTitle)
	assert.Equal(t, "r2", updated[1].RecipeID)
	assert.Equal(t, "r1", slots[0].RecipeID, "input slots are not mutated")

	unchanged := Apply(Decision{Action: "none"}, slots, testCandidates())
	assert.Equal(t, slots, unchanged)
}

func TestRefineInvalidSwapBecomesNoop(t *testing.T) {
	agent := NewRefinementAgent(&stubCompleter{response: `{
		"action": "swap", "day": "friday", "recipe_id": "r3", "reply": "done"
	}`})

	plan := &MealPlan{Slots: []MealSlot{{Day: "monday", RecipeID: "r1"}}}
	decision := agent.Refine(context.Background(), plan, testCandidates(), nil, "swap friday please")

	assert.Equal(t, "none", decision.Action, "swap for a day not on the plan is rejected")
	assert.NotEmpty(t, decision.Reply)
}

func TestRefineValidSwap(t *testing.T) {
	agent := NewRefinementAgent(&stubCompleter{response: `{
		"action": "swap", "day": "monday", "recipe_id": "r2", "reply": ""
	}`})

	plan := &MealPlan{Slots: []MealSlot{{Day: "monday", RecipeID: "r1"}}}
	decision := agent.Refine(context.Background(), plan, testCandidates(), nil, "something lighter on monday")

	assert.Equal(t, "swap", decision.Action)
	assert.Equal(t, "r2", decision.RecipeID)
	assert.Contains(t, decision.Reply, "Fried Noodles", "default reply names the replacement")
}
