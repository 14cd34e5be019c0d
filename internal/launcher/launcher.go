package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/go-logr/logr"

	"github.com/capsulerun/capsule/internal/action"
	"github.com/capsulerun/capsule/internal/archivefmt"
	"github.com/capsulerun/capsule/internal/cachepath"
	"github.com/capsulerun/capsule/internal/caplet"
	"github.com/capsulerun/capsule/internal/dependency"
	"github.com/capsulerun/capsule/internal/manifest"
	"github.com/capsulerun/capsule/internal/runtimelocator"
	"github.com/capsulerun/capsule/internal/tracing"
)

// Run executes the full pipeline spec.md §4.7 describes: load archive,
// parse manifest, apply caplets, either run early-exit actions or
// resolve cache/runtime/dependencies, build the command, spawn the
// child, and mirror its exit status.
func Run(ctx context.Context, cfg Config) (int, error) {
	stdout := asWriter(cfg.Stdout, os.Stdout)
	stderr := asWriter(cfg.Stderr, os.Stderr)
	stdin := asReader(cfg.Stdin, os.Stdin)

	log := newLogger(cfg.LogLevel)

	tp, err := tracing.InitTracerProvider(log, tracing.Options{Enabled: cfg.EnableTracing, Endpoint: cfg.TraceEndpoint})
	if err != nil {
		return exitFrom(err, 1)
	}
	defer tracing.Shutdown(ctx, log, tp)
	ctx, span := tracing.StartNewSpan(ctx, "launcher.Run")
	defer span.End()

	env := cfg.Env
	if env == nil {
		env = os.Getenv
	}

	archive, err := archivefmt.Open(cfg.ArchivePath)
	if err != nil {
		return exitFrom(wrapExit(ExitInvalidArchive, "invalid-archive", err), 1)
	}
	defer archive.Close()

	m, err := loadManifest(archive)
	if err != nil {
		return exitFrom(wrapExit(ExitInvalidManifest, "invalid-manifest", err), 1)
	}
	if err := m.ValidateMode(cfg.Mode); err != nil {
		return exitFrom(wrapExit(ExitInvalidManifest, "invalid-manifest", err), 1)
	}

	prelimCtx := preliminaryContext(cfg.Mode)
	chain, err := resolveCaplets(m, prelimCtx, log)
	if err != nil {
		return exitFrom(err, 1)
	}
	rmPrelim := resolvedManifest{m: m, ctx: prelimCtx, chain: chain}

	appID, err := resolveAppID(rmPrelim, cfg.ExplicitAppID)
	if err != nil {
		return exitFrom(err, 1)
	}
	appVersion, _ := rmPrelim.get(manifest.ApplicationVersion)

	if cfg.anyAction() {
		code, err := runActions(ctx, cfg, rmPrelim, archive, appID, appVersion, log, stdout)
		return exitFrom(err, code)
	}

	constraints := buildConstraints(rmPrelim)
	inst, err := selectRuntime(ctx, log, cfg, constraints)
	if err != nil {
		return exitFrom(wrapExit(ExitNoMatchingRuntime, "no-matching-runtime", err), 1)
	}
	log.V(1).Info("selected runtime", "version", inst.Version.String(), "home", inst.Home, "jdk", inst.IsJDK)

	finalCtx := finalContext(cfg.Mode, inst.Version.Major)
	rm := resolvedManifest{m: m, ctx: finalCtx, chain: chain}

	script, _ := rm.get(manifest.Script)
	root, err := cachepath.ResolveRoot(env)
	if err != nil {
		return exitFrom(wrapExit(ExitCacheIOFailure, "cache-io-failure", err), 1)
	}

	var cache cacheResult
	if extractionRequired(rm, script) {
		cache, err = prepareCache(archive, root, appID, appVersion, cfg.Reset, log)
		if err != nil {
			return exitFrom(err, 1)
		}
	}
	if cache.Cleanup != nil {
		defer cache.Cleanup()
	}

	repos := append(append([]string{}, cfg.Repositories...), rm.list(manifest.Repositories)...)
	external, closeResolver, err := buildExternalResolver(ctx, cfg, repos, log)
	if err != nil {
		return exitFrom(wrapExit(ExitResolverFailure, "resolver-failure", err), 1)
	}
	if closeResolver != nil {
		defer closeResolver()
	}
	resolver := dependency.New(archive, external, log)

	ep, err := resolveEntrypoint(ctx, resolver, rm, cache.AppDir)
	if err != nil {
		return exitFrom(err, 1)
	}
	if ep.MainClass == "" && ep.MainJarPath == "" {
		return exitFrom(wrapExit(ExitMissingEntrypoint, "missing-entrypoint",
			fmt.Errorf("no Application-Class and no Application entrypoint declared")), 1)
	}

	mainArtifactPath, err := resolveMainArtifact(ctx, resolver, rm, cache.AppDir)
	if err != nil {
		return exitFrom(err, 1)
	}

	deps, err := resolveDependencies(ctx, resolver, rm, cache.AppDir, cache.AppDir)
	if err != nil {
		return exitFrom(err, 1)
	}

	agents, err := resolveAgents(ctx, resolver, rm)
	if err != nil {
		return exitFrom(err, 1)
	}

	built, err := assembleCommand(rm, cfg, cfg.ArchivePath, cache, inst.Home, deps, agents, ep, mainArtifactPath, appID, 0)
	if err != nil {
		return exitFrom(err, 1)
	}

	cmd := exec.Command(built.Program, built.Args...)
	cmd.Env = built.Env
	if built.Dir != "" {
		cmd.Dir = built.Dir
	}

	stdioCleanup, err := wireStdio(cmd, stdin, stdout, stderr, stdioWorkaroundNeeded(inst.Version.Major))
	if err != nil {
		return exitFrom(wrapExit(ExitChildSpawnFailure, "child-spawn-failure", err), 1)
	}
	defer stdioCleanup()

	mount := chain.MountProcess(caplet.DefaultMount)

	code, err := spawnAndSupervise(cmd, mount, log)
	return exitFrom(err, code)
}

// runActions executes every requested early-exit action (spec.md §4.9:
// "if multiple are set, all run, then exit with code 0") and always
// returns exit code 0 unless one of them fails.
func runActions(
	ctx context.Context,
	cfg Config,
	rm resolvedManifest,
	archive *archivefmt.Reader,
	appID, appVersion string,
	log logr.Logger,
	stdout io.Writer,
) (int, error) {
	env := cfg.Env
	if env == nil {
		env = os.Getenv
	}

	if cfg.PrintVersion {
		if err := action.PrintVersion(stdout, appID, appVersion); err != nil {
			return 1, err
		}
	}

	if cfg.ListRuntimes {
		loc := runtimelocator.New(log, runtimelocator.Probe)
		current, err := currentInstallation(ctx, loc, env)
		if err != nil {
			return 1, wrapExit(ExitNoMatchingRuntime, "no-matching-runtime", err)
		}
		if err := action.ListRuntimes(ctx, stdout, loc, current); err != nil {
			return 1, err
		}
	}

	if cfg.ListModes {
		if err := action.ListModes(stdout, rm.m.Modes()); err != nil {
			return 1, err
		}
	}

	if cfg.PrintTree || cfg.ResolveOnly {
		repos := append(append([]string{}, cfg.Repositories...), rm.list(manifest.Repositories)...)
		external, closeResolver, err := buildExternalResolver(ctx, cfg, repos, log)
		if err != nil {
			return 1, wrapExit(ExitResolverFailure, "resolver-failure", err)
		}
		if closeResolver != nil {
			defer closeResolver()
		}
		resolver := dependency.New(archive, external, log)
		coords := rm.list(manifest.Dependencies)

		if cfg.PrintTree {
			if err := action.PrintTree(ctx, stdout, resolver, coords); err != nil {
				return 1, wrapExit(ExitResolverFailure, "resolver-failure", err)
			}
		}
		if cfg.ResolveOnly {
			if err := action.Resolve(ctx, resolver, coords); err != nil {
				return 1, wrapExit(ExitResolverFailure, "resolver-failure", err)
			}
		}
	}

	return 0, nil
}

// buildExternalResolver wires the dependency resolver collaborator
// from cfg: a spawned subprocess, a network daemon, or none at all
// (embedded-archive resolution only). repos (host CAPSULE_REPOS/--repo
// additions merged with the manifest's own Repositories list) are
// forwarded to a spawned subprocess as extra --repo flags.
func buildExternalResolver(ctx context.Context, cfg Config, repos []string, log logr.Logger) (*dependency.ExternalResolver, func(), error) {
	switch {
	case cfg.ResolverCommand != "":
		args := cfg.ResolverArgs
		for _, repo := range repos {
			args = append(args, "--repo", repo)
		}
		r, err := dependency.NewSubprocessResolver(ctx, cfg.ResolverCommand, args, log)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { _ = r.Close() }, nil
	case cfg.ResolverNetwork != "" && cfg.ResolverAddress != "":
		r, err := dependency.NewNetResolver(ctx, cfg.ResolverNetwork, cfg.ResolverAddress, log)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { _ = r.Close() }, nil
	default:
		return nil, nil, nil
	}
}

// exitFrom normalizes an error into (exitCode, error): an *ExitError
// carries its own code; any other non-nil error is a generic failure
// (exit 1); a nil error passes fallback through unchanged (the child's
// own mirrored exit code).
func exitFrom(err error, fallback int) (int, error) {
	if err == nil {
		return fallback, nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, err
	}
	return 1, err
}

func asWriter(w Writer, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}

func asReader(r Reader, def io.Reader) io.Reader {
	if r == nil {
		return def
	}
	return r
}

func (c Config) anyAction() bool {
	return c.PrintVersion || c.ListRuntimes || c.ListModes || c.PrintTree || c.ResolveOnly
}
