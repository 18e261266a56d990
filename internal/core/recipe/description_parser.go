package recipe

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"meal-planner/internal/core/ai"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// maxDescriptionChars bounds the text sent to the model per parse.
const maxDescriptionChars = 2000

const parserSystemPrompt = `You extract ingredients from cooking video titles and descriptions.

Respond with a JSON object only, no other text:
{
  "ingredients": ["normalized ingredient names, no quantities or units"],
  "confidence": 0.0
}

confidence is between 0 and 1: how certain you are this content is an actual recipe and the ingredient list is complete. Use an empty list and confidence 0 when the text is not about cooking.`

// DescriptionParser extracts ingredient lists from platform content via
// the model.
type DescriptionParser struct {
	ai completer
}

// NewDescriptionParser creates a parser backed by the given model client.
func NewDescriptionParser(client completer) *DescriptionParser {
	return &DescriptionParser{ai: client}
}

// TitleDescription is one parse input.
type TitleDescription struct {
	Title       string
	Description string
}

// Parse extracts ingredients from a title and description. A model decline
// yields an empty result with zero confidence, never an error; transport
// failures propagate.
func (p *DescriptionParser) Parse(ctx context.Context, title, description string) (ParsedIngredients, error) {
	user := fmt.Sprintf("Title: %s\n\nDescription: %s", title, description)
	user = common.Truncate(user, maxDescriptionChars)

	var parsed ParsedIngredients
	err := p.ai.Structured(ctx, parserSystemPrompt, user, &parsed)
	if err != nil {
		if errors.Is(err, ai.ErrDeclined) {
			common.LogDebug("description parse declined", zap.String("title", common.Truncate(title, 60)))
			return ParsedIngredients{Ingredients: []string{}}, nil
		}
		return ParsedIngredients{}, err
	}

	if parsed.Ingredients == nil {
		parsed.Ingredients = []string{}
	}
	if parsed.Confidence < 0 {
		parsed.Confidence = 0
	}
	if parsed.Confidence > 1 {
		parsed.Confidence = 1
	}
	return parsed, nil
}

// ParseBatch parses all inputs concurrently, preserving input order. The
// first transport failure is returned alongside the partial results;
// declines surface as empty entries as in Parse.
func (p *DescriptionParser) ParseBatch(ctx context.Context, inputs []TitleDescription) ([]ParsedIngredients, error) {
	results := make([]ParsedIngredients, len(inputs))
	errs := make([]error, len(inputs))

	var wg sync.WaitGroup
	for i, in := range inputs {
		wg.Add(1)
		go func(i int, in TitleDescription) {
			defer wg.Done()
			results[i], errs[i] = p.Parse(ctx, in.Title, in.Description)
		}(i, in)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
