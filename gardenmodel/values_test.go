package gardenmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputToData(t *testing.T) {
	in := NewInput("joe", "flour", "1", "wheat")
	d := InputToData(in)

	assert.Equal(t, "joe", d.Entity())
	assert.Equal(t, "flour", d.Name())
	assert.Equal(t, "1", d.Version())
	assert.Equal(t, "wheat", d.Value())
	assert.Equal(t, LinealHash("flour", "1"), d.Lineage())
}

func TestDataToWorkInput_ComputesHash(t *testing.T) {
	d := NewData("joe", "flour", "1", "lineage-1", "wheat")
	wi := DataToWorkInput(d)

	assert.Equal(t, ValueHash("wheat"), wi.Hash())
	assert.Equal(t, "lineage-1", wi.Lineage())
	assert.Equal(t, "wheat", wi.Value())
}

func TestNewWorkInput_PreservesSuppliedHash(t *testing.T) {
	wi := NewWorkInput("flour", "1", "lineage-1", "wheat", "deadbeef")
	assert.Equal(t, "deadbeef", wi.Hash())
}

func TestWorkInputToResultInput_DropsValue(t *testing.T) {
	wi := NewWorkInput("flour", "1", "lineage-1", "wheat", "")
	ri := WorkInputToResultInput(wi)

	assert.Equal(t, wi.Name(), ri.Name())
	assert.Equal(t, wi.Version(), ri.Version())
	assert.Equal(t, wi.Lineage(), ri.Lineage())
	assert.Equal(t, wi.Hash(), ri.Hash())
}

func TestWorkInputRoundTrip_ReattachValue(t *testing.T) {
	original := NewWorkInput("flour", "1", "lineage-1", "wheat", "")
	ri := WorkInputToResultInput(original)
	reattached := NewWorkInput(ri.Name(), ri.Version(), ri.Lineage(), "wheat", ri.Hash())

	assert.Equal(t, original, reattached)
}

func TestWork_ToResult(t *testing.T) {
	w := NewWork("joe", "cake", "1", "cake-lineage", []WorkInput{
		NewWorkInput("flour", "1", "flour-lineage", "wheat", ""),
	})

	r := w.ToResult("baked:wheat")
	d := ResultToData(r)

	assert.Equal(t, "joe", d.Entity())
	assert.Equal(t, "cake", d.Name())
	assert.Equal(t, "1", d.Version())
	assert.Equal(t, "cake-lineage", d.Lineage())
	assert.Equal(t, "baked:wheat", d.Value())
	require.Len(t, r.Inputs(), 1)
	assert.Equal(t, "flour", r.Inputs()[0].Name())
}

func TestWork_ToResultError(t *testing.T) {
	w := NewWork("joe", "cake", "1", "cake-lineage", []WorkInput{
		NewWorkInput("flour", "1", "flour-lineage", "wheat", ""),
	})

	re := w.ToResultError("boom")
	assert.Equal(t, "boom", re.Error())
	assert.Equal(t, "cake-lineage", re.Lineage())
	require.Len(t, re.Inputs(), 1)
}

func TestWork_Args_PreservesOrder(t *testing.T) {
	w := NewWork("joe", "cake", "1", "lineage", []WorkInput{
		NewWorkInput("eggs", "1", "l1", "E", ""),
		NewWorkInput("flour", "1", "l2", "F", ""),
	})

	assert.Equal(t, []string{"E", "F"}, w.Args())
}
