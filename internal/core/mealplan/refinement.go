package mealplan

import (
	"context"
	"fmt"
	"strings"

	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

const refinementSystemPrompt = `You adjust a weekly meal plan based on the user's message. You may swap one day's recipe for one of the available alternatives, or leave the plan unchanged.

Respond with a JSON object only, no other text:
{
  "action": "swap" or "none",
  "day": "monday",
  "recipe_id": "replacement recipe id, required for swap",
  "reply": "one or two sentences to the user"
}`

// Decision is the outcome of one refinement turn.
type Decision struct {
	Action   string `json:"action"`
	Day      string `json:"day"`
	RecipeID string `json:"recipe_id"`
	Reply    string `json:"reply"`
}

// RefinementAgent turns chat messages into plan adjustments. Invalid or
// declined model output yields a no-op decision with an apology, never an
// error.
type RefinementAgent struct {
	ai completer
}

// NewRefinementAgent creates an agent backed by the given model client.
func NewRefinementAgent(client completer) *RefinementAgent {
	return &RefinementAgent{ai: client}
}

// Refine decides how to adjust the plan in response to message. candidates
// are the recipes available as replacements.
func (a *RefinementAgent) Refine(ctx context.Context, plan *MealPlan, candidates []Candidate, history []ChatMessage, message string) Decision {
	byID := make(map[string]Candidate, len(candidates))
	altLines := make([]string, 0, len(candidates))
	for _, c := range candidates {
		byID[c.RecipeID] = c
		altLines = append(altLines, fmt.Sprintf("- %s: %s", c.RecipeID, c.Title))
	}

	planLines := make([]string, 0, len(plan.Slots))
	planDays := make(map[string]bool, len(plan.Slots))
	for _, s := range plan.Slots {
		planDays[s.Day] = true
		planLines = append(planLines, fmt.Sprintf("- %s: %s", s.Day, s.RecipeTitle))
	}

	var historyLines []string
	for _, m := range history {
		historyLines = append(historyLines, fmt.Sprintf("%s: %s", m.Role, m.Content))
	}

	user := fmt.Sprintf("Current plan:\n%s\n\nAlternatives:\n%s\n\nConversation so far:\n%s\n\nUser message: %s",
		strings.Join(planLines, "\n"),
		strings.Join(altLines, "\n"),
		strings.Join(historyLines, "\n"),
		message,
	)

	var d Decision
	if err := a.ai.Structured(ctx, refinementSystemPrompt, user, &d); err != nil {
		common.LogWarn("plan refinement failed", zap.Error(err))
		return noopDecision()
	}

	d.Day = strings.ToLower(d.Day)
	switch d.Action {
	case "none":
		if d.Reply == "" {
			d.Reply = "The plan stays as it is."
		}
		return d
	case "swap":
		if _, ok := byID[d.RecipeID]; !ok || !planDays[d.Day] {
			common.LogWarn("plan refinement produced invalid swap",
				zap.String("day", d.Day),
				zap.String("recipe_id", d.RecipeID),
			)
			return noopDecision()
		}
		if d.Reply == "" {
			d.Reply = fmt.Sprintf("Swapped %s to %s.", d.Day, byID[d.RecipeID].Title)
		}
		return d
	default:
		return noopDecision()
	}
}

// Apply executes a swap decision against the plan's slots, returning the
// updated slot list. No-op decisions return the slots unchanged.
func Apply(d Decision, slots []MealSlot, candidates []Candidate) []MealSlot {
	if d.Action != "swap" {
		return slots
	}
	var replacement *Candidate
	for i := range candidates {
		if candidates[i].RecipeID == d.RecipeID {
			replacement = &candidates[i]
			break
		}
	}
	if replacement == nil {
		return slots
	}

	out := make([]MealSlot, len(slots))
	copy(out, slots)
	for i := range out {
		if out[i].Day == d.Day {
			out[i] = slotFor(d.Day, *replacement)
		}
	}
	return out
}

func noopDecision() Decision {
	return Decision{
		Action: "none",
		Reply:  "Sorry, I couldn't apply that change. Could you rephrase it?",
	}
}
