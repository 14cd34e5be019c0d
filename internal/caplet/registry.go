package caplet

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/capsulerun/capsule/pkg/coordinate"
)

// Factory constructs a fresh Hook instance for a caplet entry. attr
// lets the caplet read base manifest attributes it needs for its own
// decisions, independent of the override chain.
type Factory func(log logr.Logger, attr AttributeLookup) Hook

var registry = map[string]Factory{}

// Register adds a builtin caplet factory under name, the identifier a
// Caplets entry matches by class name (spec.md §4.8). Intended to be
// called from package init functions.
func Register(name string, f Factory) {
	registry[name] = f
}

// ErrUnknownCaplet is returned by Resolve when a Caplets entry names a
// caplet this launcher has no builtin implementation for. The original
// source dynamically loads caplet classes from the resolved dependency;
// spec.md's REDESIGN FLAGS replace that with a fixed pipeline of typed
// hooks, so an unrecognized entry is a configuration error rather than
// something resolvable at runtime.
type ErrUnknownCaplet struct {
	Entry string
}

func (e *ErrUnknownCaplet) Error() string {
	return fmt.Sprintf("caplet: no builtin implementation for %q", e.Entry)
}

// Resolve looks up each Caplets entry (spec.md §4.8: "by class name or
// coordinates") against the builtin registry. A coordinate-form entry
// is matched by its artifact id, since a builtin caplet has no group or
// version of its own.
func Resolve(entries []string, log logr.Logger, attr AttributeLookup) ([]Hook, error) {
	hooks := make([]Hook, 0, len(entries))
	for _, entry := range entries {
		key := entry
		if c, err := coordinate.Parse(entry); err == nil {
			key = c.Artifact
		}
		factory, ok := registry[key]
		if !ok {
			return nil, &ErrUnknownCaplet{Entry: entry}
		}
		hooks = append(hooks, factory(log.WithName("caplet").WithValues("caplet", key), attr))
	}
	return hooks, nil
}
