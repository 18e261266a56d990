package ingredient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIngredients() []Ingredient {
	return []Ingredient{
		{Name: "chicken", Quantity: "500", Unit: "g", Confidence: 0.95},
		{Name: "rice", Quantity: "2", Unit: "cups", Confidence: 0.9},
	}
}

func TestSessionCreateAndGet(t *testing.T) {
	store := NewSessionStore()

	session := store.Create("u1", "chicken and rice", testIngredients())
	require.NotNil(t, session)
	assert.NotEmpty(t, session.ID)
	require.Len(t, session.Items, 2)
	assert.Equal(t, StatusAvailable, session.Items[0].Status)

	assert.Equal(t, session, store.Get(session.ID))
	assert.Nil(t, store.Get("missing"))
}

func TestSessionLatest(t *testing.T) {
	store := NewSessionStore()
	assert.Nil(t, store.Latest("u1"))

	store.Create("u1", "first", testIngredients())
	second := store.Create("u1", "second", testIngredients())

	assert.Equal(t, second.ID, store.Latest("u1").ID)
	assert.Nil(t, store.Latest("u2"))
}

func TestSessionAddRemoveItems(t *testing.T) {
	store := NewSessionStore()
	session := store.Create("u1", "chicken", testIngredients()[:1])

	require.True(t, store.AddItem("u1", session.ID, Ingredient{Name: "soy sauce", Confidence: 1}))
	assert.Len(t, store.Get(session.ID).Items, 2)

	assert.False(t, store.AddItem("u2", session.ID, Ingredient{Name: "x"}), "other user cannot modify")
	assert.False(t, store.AddItem("u1", "missing", Ingredient{Name: "x"}))

	require.True(t, store.RemoveItem("u1", session.ID, "soy sauce"))
	assert.Len(t, store.Get(session.ID).Items, 1)
	assert.False(t, store.RemoveItem("u1", session.ID, "soy sauce"))
}

func TestSessionUpdateStatus(t *testing.T) {
	store := NewSessionStore()
	session := store.Create("u1", "chicken and rice", testIngredients())

	require.True(t, store.UpdateStatus("u1", session.ID, "chicken", StatusUsed))
	assert.Equal(t, []string{"rice"}, store.Get(session.ID).AvailableIngredients())

	assert.False(t, store.UpdateStatus("u1", session.ID, "chicken", "eaten"), "unknown status rejected")
	assert.False(t, store.UpdateStatus("u1", session.ID, "truffle", StatusUsed))

	require.True(t, store.UpdateStatus("u1", session.ID, "chicken", StatusAvailable))
	assert.Equal(t, []string{"chicken", "rice"}, store.Get(session.ID).AvailableIngredients())
}
