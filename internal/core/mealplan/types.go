package mealplan

import "time"

// MealSlot assigns one recipe to one day of the plan.
type MealSlot struct {
	Day          string `json:"day"`
	RecipeID     string `json:"recipe_id"`
	RecipeTitle  string `json:"recipe_title"`
	RecipeURL    string `json:"recipe_url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// MealPlan is a week's worth of recipe assignments for a user.
type MealPlan struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Slots     []MealSlot `json:"slots"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ChatMessage is one turn of a refinement conversation.
type ChatMessage struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// RefinementSession is the chat history attached to one plan.
type RefinementSession struct {
	ID        string        `json:"id"`
	PlanID    string        `json:"plan_id"`
	UserID    string        `json:"user_id"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"created_at"`
}

// Candidate is a ranked recipe available for plan assignment.
type Candidate struct {
	RecipeID     string
	Title        string
	URL          string
	ThumbnailURL string
	Coverage     float64
}

// Weekdays in plan order.
var Weekdays = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// IsWeekday reports whether day names a valid plan day.
func IsWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}
