// Package action implements the launcher's query-only, early-exit
// operations (spec.md §4.9): print version+id, list detected runtimes,
// print the resolved dependency tree, and resolve dependencies without
// launching. Actions compose — the launcher runs every requested one,
// then exits 0 regardless of how many ran.
package action

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v2"

	"github.com/capsulerun/capsule/internal/dependency"
	"github.com/capsulerun/capsule/internal/runtimelocator"
)

// PrintVersion writes the application's id and declared version,
// mirroring the `capsule.version`/`capsule.app.id` process-wide
// properties (spec.md §6).
func PrintVersion(w io.Writer, appID, version string) error {
	if version == "" {
		_, err := fmt.Fprintf(w, "%s\n", appID)
		return err
	}
	_, err := fmt.Fprintf(w, "%s %s\n", appID, version)
	return err
}

// ListRuntimes prints every runtime installation discovered from
// current's home, one per line, for the `capsule.jvms` property.
func ListRuntimes(ctx context.Context, w io.Writer, loc *runtimelocator.Locator, current runtimelocator.Installation) error {
	candidates, err := loc.Discover(ctx, current.Home)
	if err != nil {
		return fmt.Errorf("action: discovering runtimes: %w", err)
	}
	all := append([]runtimelocator.Installation{current}, candidates...)
	for _, inst := range all {
		kind := "jre"
		if inst.IsJDK {
			kind = "jdk"
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", inst.Version.String(), kind, inst.Home); err != nil {
			return err
		}
	}
	return nil
}

// ListModes prints the manifest's user-selectable mode names, one per
// line, for the `capsule.modes` property.
func ListModes(w io.Writer, modes []string) error {
	for _, mode := range modes {
		if _, err := fmt.Fprintln(w, mode); err != nil {
			return err
		}
	}
	return nil
}

// PrintTree renders the resolved dependency tree for coords as YAML,
// for the `capsule.tree` property, grounded on the teacher's own
// `yaml.Marshal` + raw-bytes-to-writer reporting convention.
func PrintTree(ctx context.Context, w io.Writer, resolver *dependency.Resolver, coords []string) error {
	tree, err := resolver.PrintTree(ctx, coords)
	if err != nil {
		return fmt.Errorf("action: printing dependency tree: %w", err)
	}
	b, err := yaml.Marshal(tree)
	if err != nil {
		return fmt.Errorf("action: marshalling dependency tree: %w", err)
	}
	_, err = w.Write(b)
	return err
}

// Resolve downloads (or locates embedded) every coordinate in coords
// without launching the application, for the `capsule.resolve`
// property.
func Resolve(ctx context.Context, resolver *dependency.Resolver, coords []string) error {
	for _, coord := range coords {
		if _, err := resolver.ResolveRoot(ctx, coord); err != nil {
			return fmt.Errorf("action: resolving %s: %w", coord, err)
		}
	}
	return nil
}
