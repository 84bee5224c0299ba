package plugin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilemakc/gardenflow/garden"
	"github.com/smilemakc/gardenflow/worker"
)

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "manifest.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoader_DeclaresPathsAndRegistersFunctions(t *testing.T) {
	funcs := NewFuncRegistry()
	funcs.Register("bake", func(args ...string) (string, error) {
		return "baked:" + args[0], nil
	})

	manifest := writeManifest(t, `
paths:
  - name: cake
    version: "1"
    inputs:
      - {name: flour, version: "1"}
    function: bake
`)

	g := garden.New()
	reg := worker.NewBlocking(nil)

	l := NewLoader(funcs)
	require.NoError(t, l.Load(manifest, g, reg))

	recipes := g.InputsFor("cake", "1")
	require.Len(t, recipes, 1)
	assert.Equal(t, []garden.Ref{{Name: "flour", Version: "1"}}, recipes[0])
}

func TestLoader_FailsOnUnregisteredFunction(t *testing.T) {
	funcs := NewFuncRegistry()
	manifest := writeManifest(t, `
paths:
  - name: cake
    version: "1"
    inputs: []
    function: missing
`)

	g := garden.New()
	reg := worker.NewBlocking(nil)

	l := NewLoader(funcs)
	err := l.Load(manifest, g, reg)
	assert.Error(t, err)
	assert.Empty(t, g.InputsFor("cake", "1"))
}

func TestLoader_FailsOnCyclicManifest(t *testing.T) {
	funcs := NewFuncRegistry()
	funcs.Register("noop", func(args ...string) (string, error) { return "", nil })

	manifest := writeManifest(t, `
paths:
  - name: a
    version: "1"
    inputs:
      - {name: a, version: "1"}
    function: noop
`)

	g := garden.New()
	reg := worker.NewBlocking(nil)

	l := NewLoader(funcs)
	err := l.Load(manifest, g, reg)
	assert.Error(t, err)
}

func TestLoader_DeclarePathsNeedsNoFunctionRegistration(t *testing.T) {
	manifest := writeManifest(t, `
paths:
  - name: cake
    version: "1"
    inputs:
      - {name: flour, version: "1"}
    function: bake
`)

	g := garden.New()
	l := NewLoader(NewFuncRegistry())
	require.NoError(t, l.DeclarePaths(manifest, g))

	recipes := g.InputsFor("cake", "1")
	require.Len(t, recipes, 1)
	assert.Equal(t, []garden.Ref{{Name: "flour", Version: "1"}}, recipes[0])
}
