// Package garden holds the path DAG: the declaration that a destination
// (name, version) is computable from one or more ordered recipes of input
// (name, version) pairs, with cycle detection at declaration time.
//
// Grounded on the now-removed internal/engine/graph.go's Graph/ValidateDAG
// (its Kahn's-algorithm cycle check), adapted from a single-edge-per-pair graph to
// a multimap of alternative recipes per destination, and from whole-graph
// validation to incremental ancestor-walk validation on each AddPath call (the
// graph is never in an invalid state between calls, so there is nothing to
// re-validate globally).
package garden

import (
	"fmt"
	"sync"

	"github.com/smilemakc/gardenflow/gardenmodel"
)

// Ref is a destination or input reference: a named, versioned path.
type Ref = gardenmodel.PathRef

// CycleError reports that adding a path would close a cycle in the DAG.
type CycleError struct {
	Dest Ref
	Via  Ref
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("garden: adding path %s/%s would form a cycle via %s/%s",
		e.Dest.Name, e.Dest.Version, e.Via.Name, e.Via.Version)
}

// Garden is the path DAG: two multimaps keyed by (name, version).
type Garden struct {
	mu sync.RWMutex

	// inputsOf[dest] holds every recipe (ordered list of input refs) declared
	// for dest, in the order they were added.
	inputsOf map[Ref][][]Ref

	// requiredBy[input] holds the set of destinations that name input
	// somewhere in one of their recipes.
	requiredBy map[Ref][]Ref
	seenReq    map[Ref]map[Ref]bool
}

// New creates an empty Garden.
func New() *Garden {
	return &Garden{
		inputsOf:   make(map[Ref][][]Ref),
		requiredBy: make(map[Ref][]Ref),
		seenReq:    make(map[Ref]map[Ref]bool),
	}
}

// AddPath declares that dest (name, version) can be computed from inputs, in
// the given order. Re-adding the same destination appends another recipe;
// alternative recipes need not share the same arity.
//
// Fails with *CycleError if dest is among inputs directly, or if dest is in
// the transitive ancestor set of any input (i.e. computing that input would,
// transitively, require dest). The Garden is left unchanged on failure.
func (g *Garden) AddPath(name, version string, inputs []Ref) error {
	dest := Ref{Name: name, Version: version}

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, in := range inputs {
		if in == dest {
			return &CycleError{Dest: dest, Via: in}
		}
		if g.isAncestorLocked(dest, in, make(map[Ref]bool)) {
			return &CycleError{Dest: dest, Via: in}
		}
	}

	recipe := make([]Ref, len(inputs))
	copy(recipe, inputs)
	g.inputsOf[dest] = append(g.inputsOf[dest], recipe)

	if g.seenReq[dest] == nil {
		g.seenReq[dest] = make(map[Ref]bool)
	}
	for _, in := range inputs {
		seen := g.seenReq[in]
		if seen == nil {
			seen = make(map[Ref]bool)
			g.seenReq[in] = seen
		}
		if !seen[dest] {
			seen[dest] = true
			g.requiredBy[in] = append(g.requiredBy[in], dest)
		}
	}

	return nil
}

// isAncestorLocked reports whether target is in the transitive ancestor set
// of node: the set of refs that node (directly or indirectly) depends on, per
// the recipes already recorded for node. Must be called with g.mu held.
func (g *Garden) isAncestorLocked(target, node Ref, visited map[Ref]bool) bool {
	if visited[node] {
		return false
	}
	visited[node] = true

	for _, recipe := range g.inputsOf[node] {
		for _, in := range recipe {
			if in == target {
				return true
			}
			if g.isAncestorLocked(target, in, visited) {
				return true
			}
		}
	}
	return false
}

// PathsRequiring returns every destination whose recipe names (name, version)
// as an input, in first-declared order. Empty if nothing depends on it.
func (g *Garden) PathsRequiring(name, version string) []Ref {
	g.mu.RLock()
	defer g.mu.RUnlock()

	dests := g.requiredBy[Ref{Name: name, Version: version}]
	out := make([]Ref, len(dests))
	copy(out, dests)
	return out
}

// InputsFor returns every recipe declared for (name, version), in the order
// they were added. Empty if the destination is unknown.
func (g *Garden) InputsFor(name, version string) [][]Ref {
	g.mu.RLock()
	defer g.mu.RUnlock()

	recipes := g.inputsOf[Ref{Name: name, Version: version}]
	out := make([][]Ref, len(recipes))
	for i, r := range recipes {
		cp := make([]Ref, len(r))
		copy(cp, r)
		out[i] = cp
	}
	return out
}
