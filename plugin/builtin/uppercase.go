// Package builtin ships the worker functions compiled into every worker
// binary, self-registered into plugin.Builtins the way
// rakunlabs-at/internal/service/workflow/nodes registers each node type from
// its own init(). Importing this package for its side effect (blank import in
// cmd/worker) is what makes plugin.Builtins non-empty.
package builtin

import (
	"fmt"
	"strings"

	"github.com/smilemakc/gardenflow/plugin"
)

func init() {
	plugin.Builtins.Register("uppercase", uppercase)
}

// uppercase takes exactly one input and returns it upper-cased.
func uppercase(args ...string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("builtin: uppercase takes exactly one input, got %d", len(args))
	}
	return strings.ToUpper(args[0]), nil
}
