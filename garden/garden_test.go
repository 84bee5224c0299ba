package garden

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddPath_PreservesInsertionOrder(t *testing.T) {
	g := New()

	require.NoError(t, g.AddPath("cake", "1", []Ref{{Name: "eggs", Version: "1"}, {Name: "flour", Version: "1"}}))
	require.NoError(t, g.AddPath("cake", "1", []Ref{{Name: "mix", Version: "1"}}))

	recipes := g.InputsFor("cake", "1")
	require.Len(t, recipes, 2)
	assert.Equal(t, []Ref{{Name: "eggs", Version: "1"}, {Name: "flour", Version: "1"}}, recipes[0])
	assert.Equal(t, []Ref{{Name: "mix", Version: "1"}}, recipes[1])
}

func TestAddPath_RejectsDirectSelfLoop(t *testing.T) {
	g := New()

	err := g.AddPath("cake", "1", []Ref{{Name: "cake", Version: "1"}})
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Empty(t, g.InputsFor("cake", "1"))
}

func TestAddPath_RejectsTransitiveCycle(t *testing.T) {
	g := New()

	require.NoError(t, g.AddPath("a", "1", []Ref{{Name: "b", Version: "1"}}))
	require.NoError(t, g.AddPath("b", "1", []Ref{{Name: "c", Version: "1"}}))

	err := g.AddPath("c", "1", []Ref{{Name: "a", Version: "1"}})
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)

	// Garden is unchanged: the two original edges are intact, the third never took.
	assert.Len(t, g.InputsFor("a", "1"), 1)
	assert.Len(t, g.InputsFor("b", "1"), 1)
	assert.Empty(t, g.InputsFor("c", "1"))
}

func TestPathsRequiring(t *testing.T) {
	g := New()

	require.NoError(t, g.AddPath("cake", "1", []Ref{{Name: "flour", Version: "1"}}))
	require.NoError(t, g.AddPath("bread", "1", []Ref{{Name: "flour", Version: "1"}}))

	reqs := g.PathsRequiring("flour", "1")
	assert.ElementsMatch(t, []Ref{{Name: "cake", Version: "1"}, {Name: "bread", Version: "1"}}, reqs)
}

func TestPathsRequiring_NoDuplicatesAcrossMultipleRecipes(t *testing.T) {
	g := New()

	require.NoError(t, g.AddPath("cake", "1", []Ref{{Name: "flour", Version: "1"}}))
	require.NoError(t, g.AddPath("cake", "1", []Ref{{Name: "flour", Version: "1"}, {Name: "eggs", Version: "1"}}))

	reqs := g.PathsRequiring("flour", "1")
	assert.Equal(t, []Ref{{Name: "cake", Version: "1"}}, reqs)
}

func TestInputsFor_UnknownDestinationIsEmpty(t *testing.T) {
	g := New()
	assert.Empty(t, g.InputsFor("nope", "1"))
}
