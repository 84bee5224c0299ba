package builtin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilemakc/gardenflow/garden"
	"github.com/smilemakc/gardenflow/plugin"
	"github.com/smilemakc/gardenflow/worker"
)

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "manifest.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

// Importing this package registers uppercase/concat/identity into
// plugin.Builtins via their init()s, so a Loader built from it (nil funcs)
// can resolve a manifest naming them without any manual registration.
func TestInit_RegistersEveryBuiltinIntoBuiltins(t *testing.T) {
	manifest := writeManifest(t, `
paths:
  - name: shout
    version: "1"
    inputs:
      - {name: word, version: "1"}
    function: uppercase
`)

	g := garden.New()
	reg := worker.NewBlocking(nil)

	l := plugin.NewLoader(nil)
	require.NoError(t, l.Load(manifest, g, reg))

	recipes := g.InputsFor("shout", "1")
	require.Len(t, recipes, 1)
	assert.Equal(t, []garden.Ref{{Name: "word", Version: "1"}}, recipes[0])
}

func TestUppercase_RejectsWrongArity(t *testing.T) {
	_, err := uppercase("a", "b")
	assert.Error(t, err)
}

func TestUppercase_UppercasesItsSingleInput(t *testing.T) {
	v, err := uppercase("shout")
	require.NoError(t, err)
	assert.Equal(t, "SHOUT", v)
}

func TestConcat_JoinsEveryInput(t *testing.T) {
	v, err := concat("a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)
}

func TestIdentity_ReturnsItsSingleInputUnchanged(t *testing.T) {
	v, err := identity("same")
	require.NoError(t, err)
	assert.Equal(t, "same", v)
}

func TestIdentity_RejectsWrongArity(t *testing.T) {
	_, err := identity()
	assert.Error(t, err)
}
