package builtin

import (
	"strings"

	"github.com/smilemakc/gardenflow/plugin"
)

func init() {
	plugin.Builtins.Register("concat", concat)
}

// concat joins every input with no separator.
func concat(args ...string) (string, error) {
	return strings.Join(args, ""), nil
}
