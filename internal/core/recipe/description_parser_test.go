package recipe

import (
	"context"
	"errors"
	"strings"
	"testing"

	"meal-planner/internal/core/ai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSuccess(t *testing.T) {
	fake := &fakeCompleter{fn: respondWith(`{
		"ingredients": ["chicken thigh", "soy sauce", "ginger"],
		"confidence": 0.9
	}`)}
	parser := NewDescriptionParser(fake)

	parsed, err := parser.Parse(context.Background(), "Ginger Chicken", "Easy weeknight ginger chicken...")
	require.NoError(t, err)
	assert.Equal(t, []string{"chicken thigh", "soy sauce", "ginger"}, parsed.Ingredients)
	assert.InDelta(t, 0.9, parsed.Confidence, 0.001)
}

func TestParseDeclineReturnsEmpty(t *testing.T) {
	fake := &fakeCompleter{fn: func(_, _ string, _ interface{}) error {
		return ai.ErrDeclined
	}}
	parser := NewDescriptionParser(fake)

	parsed, err := parser.Parse(context.Background(), "Vlog #37", "not a recipe")
	require.NoError(t, err)
	assert.Empty(t, parsed.Ingredients)
	assert.Zero(t, parsed.Confidence)
}

func TestParseTransportErrorPropagates(t *testing.T) {
	fake := &fakeCompleter{fn: func(_, _ string, _ interface{}) error {
		return errors.New("timeout")
	}}
	parser := NewDescriptionParser(fake)

	_, err := parser.Parse(context.Background(), "title", "desc")
	assert.Error(t, err)
}

func TestParseTruncatesLongDescriptions(t *testing.T) {
	var sentLen int
	fake := &fakeCompleter{fn: func(_, user string, out interface{}) error {
		sentLen = len(user)
		return respondWith(`{"ingredients": ["rice"], "confidence": 0.8}`)("", "", out)
	}}
	parser := NewDescriptionParser(fake)

	long := strings.Repeat("a", 5000)
	_, err := parser.Parse(context.Background(), "title", long)
	require.NoError(t, err)
	assert.LessOrEqual(t, sentLen, maxDescriptionChars+3, "prompt bounded regardless of input size")
}

func TestParseClampsConfidence(t *testing.T) {
	fake := &fakeCompleter{fn: respondWith(`{"ingredients": ["rice"], "confidence": 1.7}`)}
	parser := NewDescriptionParser(fake)

	parsed, err := parser.Parse(context.Background(), "t", "d")
	require.NoError(t, err)
	assert.Equal(t, 1.0, parsed.Confidence)
}

func TestParseBatchPreservesOrder(t *testing.T) {
	fake := &fakeCompleter{fn: func(_, user string, out interface{}) error {
		// Echo a marker from the input back so ordering is observable.
		if strings.Contains(user, "first") {
			return respondWith(`{"ingredients": ["a"], "confidence": 0.9}`)("", "", out)
		}
		return respondWith(`{"ingredients": ["b"], "confidence": 0.9}`)("", "", out)
	}}
	parser := NewDescriptionParser(fake)

	results, err := parser.ParseBatch(context.Background(), []TitleDescription{
		{Title: "first", Description: "x"},
		{Title: "second", Description: "y"},
		{Title: "first", Description: "z"},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []string{"a"}, results[0].Ingredients)
	assert.Equal(t, []string{"b"}, results[1].Ingredients)
	assert.Equal(t, []string{"a"}, results[2].Ingredients)
}
