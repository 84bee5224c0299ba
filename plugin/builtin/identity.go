package builtin

import (
	"fmt"

	"github.com/smilemakc/gardenflow/plugin"
)

func init() {
	plugin.Builtins.Register("identity", identity)
}

// identity takes exactly one input and returns it unchanged.
func identity(args ...string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("builtin: identity takes exactly one input, got %d", len(args))
	}
	return args[0], nil
}
