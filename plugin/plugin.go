// Package plugin loads path declarations and the worker functions that
// implement them from a single manifest file, playing the role the
// plugin-module flag names on the CLI surface.
//
// FuncRegistry's package-level, RWMutex-guarded map of registered
// constructors is grounded on the now-removed internal/node/registry.go
// (worker.go's own func registry carries the same shape forward), and Load
// resolves a manifest's declared function names against that registry the
// same way node constructors used to resolve against node type names. The
// init()-based self-registration of individual functions into Builtins is a
// separate idiom, shipped by the plugin/builtin package and grounded there.
package plugin

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/smilemakc/gardenflow/garden"
	"github.com/smilemakc/gardenflow/worker"
)

// FuncRegistry is the process-wide table of compiled-in worker functions, key
// by the identifier a manifest's path declarations reference.
type FuncRegistry struct {
	mu        sync.RWMutex
	functions map[string]worker.Func
}

// Builtins is the default registry built-in function packages register
// themselves into from an init(); see plugin/builtin for the functions
// compiled into the worker binary.
var Builtins = NewFuncRegistry()

// NewFuncRegistry creates an empty FuncRegistry.
func NewFuncRegistry() *FuncRegistry {
	return &FuncRegistry{functions: make(map[string]worker.Func)}
}

// Register installs fn under id, replacing any prior registration.
func (r *FuncRegistry) Register(id string, fn worker.Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.functions[id] = fn
}

func (r *FuncRegistry) lookup(id string) (worker.Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.functions[id]
	return fn, ok
}

// refDecl is one (name, version) reference in a manifest.
type refDecl struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// pathDecl declares one computable destination: its recipe and the built-in
// function identifier that computes it.
type pathDecl struct {
	Name     string    `yaml:"name"`
	Version  string    `yaml:"version"`
	Inputs   []refDecl `yaml:"inputs"`
	Function string    `yaml:"function"`
}

// manifest is the top-level shape of a plugin-module file.
type manifest struct {
	Paths []pathDecl `yaml:"paths"`
}

// Registerer is whatever Load installs resolved functions into; both
// worker.Blocking and worker.Pooled satisfy it via their embedded registry.
type Registerer interface {
	RegisterFunction(name, version string, fn worker.Func)
}

// Loader reads a manifest file and wires its declarations into a Garden and
// a worker Registerer.
type Loader struct {
	funcs *FuncRegistry
}

// NewLoader creates a Loader resolving manifest function names against funcs.
// A nil funcs uses Builtins.
func NewLoader(funcs *FuncRegistry) *Loader {
	if funcs == nil {
		funcs = Builtins
	}
	return &Loader{funcs: funcs}
}

func parseManifest(path string) (manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return manifest{}, fmt.Errorf("plugin: reading manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return manifest{}, fmt.Errorf("plugin: parsing manifest: %w", err)
	}
	return m, nil
}

// Load parses the YAML manifest at path, declares every path it names on g,
// and registers each one's resolved function on reg. It fails on the first
// declaration whose function name isn't registered, or whose recipe would
// close a cycle; g and reg are left exactly as they were for every
// declaration applied before the failing one, but declarations already
// applied are not rolled back.
//
// Use this from the worker process, which owns the registry executing each
// path's function. The gardener process, which never executes a function
// itself, should use DeclarePaths instead.
func (l *Loader) Load(path string, g *garden.Garden, reg Registerer) error {
	m, err := parseManifest(path)
	if err != nil {
		return err
	}

	for _, decl := range m.Paths {
		fn, ok := l.funcs.lookup(decl.Function)
		if !ok {
			return fmt.Errorf("plugin: path %s/%s references unregistered function %q",
				decl.Name, decl.Version, decl.Function)
		}

		inputs := refsOf(decl)
		if err := g.AddPath(decl.Name, decl.Version, inputs); err != nil {
			return fmt.Errorf("plugin: declaring path %s/%s: %w", decl.Name, decl.Version, err)
		}

		reg.RegisterFunction(decl.Name, decl.Version, fn)
	}

	return nil
}

// DeclarePaths parses the manifest at path and declares every path it names
// on g, without requiring any function to be registered. Used by the
// gardener process: it dispatches Work to remote workers and never looks up
// a function itself.
func (l *Loader) DeclarePaths(path string, g *garden.Garden) error {
	m, err := parseManifest(path)
	if err != nil {
		return err
	}

	for _, decl := range m.Paths {
		if err := g.AddPath(decl.Name, decl.Version, refsOf(decl)); err != nil {
			return fmt.Errorf("plugin: declaring path %s/%s: %w", decl.Name, decl.Version, err)
		}
	}
	return nil
}

func refsOf(decl pathDecl) []garden.Ref {
	refs := make([]garden.Ref, len(decl.Inputs))
	for i, in := range decl.Inputs {
		refs[i] = garden.Ref{Name: in.Name, Version: in.Version}
	}
	return refs
}
