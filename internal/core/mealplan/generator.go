package mealplan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

var ErrNoCandidates = errors.New("no candidate recipes to plan with")

const generatorSystemPrompt = `You assign recipes to days of the week for a home cook. Favor variety across the week and put higher-coverage recipes on earlier days.

Respond with a JSON object only, no other text:
{
  "assignments": [
    {"day": "monday", "recipe_id": "..."}
  ]
}

Use only the given recipe IDs and only the given days, one recipe per day.`

type completer interface {
	Structured(ctx context.Context, system, user string, out interface{}) error
}

// Generator builds a weekly plan from ranked candidate recipes. The model
// picks the assignment; an invalid or declined response falls back to
// round-robin.
type Generator struct {
	ai completer
}

// NewGenerator creates a plan generator backed by the given model client.
func NewGenerator(client completer) *Generator {
	return &Generator{ai: client}
}

// Generate assigns candidates to the given days and returns a new plan.
// days defaults to the full week when empty.
func (g *Generator) Generate(ctx context.Context, userID string, candidates []Candidate, days []string) (*MealPlan, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	days = validDays(days)

	slots, err := g.modelAssignments(ctx, candidates, days)
	if err != nil {
		common.LogWarn("plan assignment fell back to round-robin", zap.Error(err))
		slots = roundRobin(candidates, days)
	}

	now := time.Now().UTC()
	return &MealPlan{
		ID:        common.GenerateUUID(),
		UserID:    userID,
		Slots:     slots,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (g *Generator) modelAssignments(ctx context.Context, candidates []Candidate, days []string) ([]MealSlot, error) {
	byID := make(map[string]Candidate, len(candidates))
	lines := make([]string, 0, len(candidates))
	for _, c := range candidates {
		byID[c.RecipeID] = c
		lines = append(lines, fmt.Sprintf("- %s: %s (coverage %.2f)", c.RecipeID, c.Title, c.Coverage))
	}

	user := fmt.Sprintf("Days: %s\nRecipes:\n%s", strings.Join(days, ", "), strings.Join(lines, "\n"))

	var out struct {
		Assignments []struct {
			Day      string `json:"day"`
			RecipeID string `json:"recipe_id"`
		} `json:"assignments"`
	}
	if err := g.ai.Structured(ctx, generatorSystemPrompt, user, &out); err != nil {
		return nil, err
	}

	allowed := make(map[string]bool, len(days))
	for _, d := range days {
		allowed[d] = true
	}

	slots := make([]MealSlot, 0, len(days))
	seen := make(map[string]bool)
	for _, a := range out.Assignments {
		day := strings.ToLower(a.Day)
		c, ok := byID[a.RecipeID]
		if !ok || !allowed[day] || seen[day] {
			return nil, fmt.Errorf("model produced invalid assignment: %s", mustJSON(a))
		}
		seen[day] = true
		slots = append(slots, slotFor(day, c))
	}
	if len(slots) != len(days) {
		return nil, fmt.Errorf("model assigned %d of %d days", len(slots), len(days))
	}
	return orderByWeek(slots), nil
}

// roundRobin cycles through candidates in rank order across the days.
func roundRobin(candidates []Candidate, days []string) []MealSlot {
	slots := make([]MealSlot, len(days))
	for i, day := range days {
		slots[i] = slotFor(day, candidates[i%len(candidates)])
	}
	return orderByWeek(slots)
}

func slotFor(day string, c Candidate) MealSlot {
	return MealSlot{
		Day:          day,
		RecipeID:     c.RecipeID,
		RecipeTitle:  c.Title,
		RecipeURL:    c.URL,
		ThumbnailURL: c.ThumbnailURL,
	}
}

func validDays(days []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, d := range days {
		d = strings.ToLower(strings.TrimSpace(d))
		if IsWeekday(d) && !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return append([]string{}, Weekdays...)
	}
	return orderDays(out)
}

func orderByWeek(slots []MealSlot) []MealSlot {
	ordered := make([]MealSlot, 0, len(slots))
	for _, day := range Weekdays {
		for _, s := range slots {
			if s.Day == day {
				ordered = append(ordered, s)
			}
		}
	}
	return ordered
}

func orderDays(days []string) []string {
	ordered := make([]string, 0, len(days))
	for _, day := range Weekdays {
		for _, d := range days {
			if d == day {
				ordered = append(ordered, d)
			}
		}
	}
	return ordered
}

func mustJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(b)
}
