package launcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/capsulerun/capsule/internal/command"
	"github.com/capsulerun/capsule/internal/dependency"
	"github.com/capsulerun/capsule/internal/manifest"
)

// resolveAgents turns Java-Agents/Native-Agents entries (each an
// archive-relative path, a coordinate, or either suffixed with
// "=agent-args") into command.AgentSpec values with their path
// resolved through the dependency adapter (spec.md §4.6 step 6).
func resolveAgents(ctx context.Context, resolver *dependency.Resolver, rm resolvedManifest) ([]command.AgentSpec, error) {
	var out []command.AgentSpec
	for _, raw := range rm.list(manifest.JavaAgents) {
		spec, err := resolveOneAgent(ctx, resolver, raw, false)
		if err != nil {
			return nil, err
		}
		out = append(out, spec)
	}
	for _, raw := range rm.list(manifest.NativeAgents) {
		spec, err := resolveOneAgent(ctx, resolver, raw, true)
		if err != nil {
			return nil, err
		}
		out = append(out, spec)
	}
	return out, nil
}

func resolveOneAgent(ctx context.Context, resolver *dependency.Resolver, raw string, native bool) (command.AgentSpec, error) {
	source, args, _ := strings.Cut(raw, "=")

	typ := "jar"
	if native {
		typ = "so"
	}
	paths, err := resolver.Resolve(ctx, source, typ)
	if err != nil {
		return command.AgentSpec{}, wrapExit(ExitDependencyNotFound, "dependency-not-found", fmt.Errorf("resolving agent %s: %w", source, err))
	}
	if len(paths) == 0 {
		return command.AgentSpec{}, wrapExit(ExitDependencyNotFound, "dependency-not-found", fmt.Errorf("agent %s resolved to no file", source))
	}
	return command.AgentSpec{Path: paths[0], Args: args, Native: native}, nil
}
