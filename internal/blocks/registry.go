// Package blocks holds the registry of named pipeline blocks. Concrete
// blocks live in subpackages and register a factory at init time under a
// dotted name like "util.Normalize"; the CLI instantiates them by name
// with key=value parameters.
package blocks

import (
	"sort"
	"strconv"

	"github.com/k-sap/udgo/core/block"
	uderrors "github.com/k-sap/udgo/core/errors"
)

// Factory builds a block from CLI parameters.
type Factory func(params map[string]string) (block.Block, error)

var registry = make(map[string]Factory)

// Register registers a factory under a dotted block name.
func Register(name string, f Factory) {
	registry[name] = f
}

// New instantiates a registered block.
func New(name string, params map[string]string) (block.Block, error) {
	f, ok := registry[name]
	if !ok {
		return nil, uderrors.NewNotFound("block", name)
	}
	return f(params)
}

// List returns the registered block names, sorted.
func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IntParam reads an integer parameter, falling back to def when absent.
func IntParam(params map[string]string, key string, def int) (int, error) {
	s, ok := params[key]
	if !ok || s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, uderrors.NewPrecondition("create block",
			"parameter "+key+" must be an integer, got "+strconv.Quote(s))
	}
	return v, nil
}

// RequireParam reads a mandatory string parameter.
func RequireParam(params map[string]string, key, blockName string) (string, error) {
	s, ok := params[key]
	if !ok || s == "" {
		return "", uderrors.NewPrecondition("create block",
			blockName+" requires the "+key+" parameter")
	}
	return s, nil
}
