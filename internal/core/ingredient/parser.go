package ingredient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"meal-planner/internal/core/ai"
)

const parserSystemPrompt = `You extract ingredients from free-form text describing what someone has in their kitchen.

Respond with a JSON object only, no other text:
{
  "ingredients": [
    {"name": "normalized ingredient name", "quantity": "2", "unit": "pieces", "confidence": 0.9}
  ]
}

quantity and unit may be empty strings when the text gives none. confidence is between 0 and 1.`

// Ingredient is one parsed pantry item.
type Ingredient struct {
	Name       string  `json:"name"`
	Quantity   string  `json:"quantity"`
	Unit       string  `json:"unit"`
	Confidence float64 `json:"confidence"`
}

// ErrUnparseable means the model could not find any ingredients in the text.
var ErrUnparseable = errors.New("no ingredients recognized in text")

type completer interface {
	Structured(ctx context.Context, system, user string, out interface{}) error
}

// Parser turns free-form pantry descriptions into structured ingredients.
type Parser struct {
	ai completer
}

// NewParser creates a parser backed by the given model client.
func NewParser(client completer) *Parser {
	return &Parser{ai: client}
}

// Parse extracts ingredients from text. Blank input and text the model
// finds no ingredients in both yield ErrUnparseable.
func (p *Parser) Parse(ctx context.Context, text string) ([]Ingredient, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrUnparseable
	}

	var out struct {
		Ingredients []Ingredient `json:"ingredients"`
	}
	err := p.ai.Structured(ctx, parserSystemPrompt, text, &out)
	if err != nil {
		if errors.Is(err, ai.ErrDeclined) {
			return nil, ErrUnparseable
		}
		return nil, fmt.Errorf("ingredient parsing failed: %w", err)
	}
	if len(out.Ingredients) == 0 {
		return nil, ErrUnparseable
	}

	for i := range out.Ingredients {
		out.Ingredients[i].Name = strings.TrimSpace(out.Ingredients[i].Name)
	}
	return out.Ingredients, nil
}
