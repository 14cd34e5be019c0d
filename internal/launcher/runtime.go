package launcher

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/go-logr/logr"

	"github.com/capsulerun/capsule/internal/runtimelocator"
)

// currentInstallation resolves "the current runtime" spec.md §4.4's
// matching fallback refers to. The original always has one: it is
// itself running inside a JVM. This port has no JVM of its own, so the
// closest equivalent is whichever runtime the host environment would
// hand a bare `java` invocation: JAVA_HOME if set, else the first java
// on PATH.
func currentInstallation(ctx context.Context, loc *runtimelocator.Locator, env func(string) string) (runtimelocator.Installation, error) {
	if home := env("JAVA_HOME"); home != "" {
		return loc.FromHome(ctx, home)
	}
	bin, err := exec.LookPath(javaBinaryName())
	if err != nil {
		return runtimelocator.Installation{}, fmt.Errorf("launcher: no JAVA_HOME set and no java found on PATH: %w", err)
	}
	return loc.FromCommand(ctx, bin)
}

func javaBinaryName() string {
	if runtime.GOOS == "windows" {
		return "java.exe"
	}
	return "java"
}

// selectRuntime implements spec.md §4.4 end to end: overrides bypass
// discovery and matching entirely; otherwise discover siblings of the
// current installation and pick the best match, falling back to the
// current installation itself when nothing else matches.
func selectRuntime(ctx context.Context, log logr.Logger, cfg Config, c runtimelocator.Constraints) (runtimelocator.Installation, error) {
	loc := runtimelocator.New(log, runtimelocator.Probe)

	if cfg.JavaCmd != "" {
		return loc.FromCommand(ctx, cfg.JavaCmd)
	}
	if cfg.JavaHome != "" {
		return loc.FromHome(ctx, cfg.JavaHome)
	}

	current, err := currentInstallation(ctx, loc, cfg.Env)
	if err != nil {
		return runtimelocator.Installation{}, err
	}

	candidates, err := loc.Discover(ctx, current.Home)
	if err != nil {
		return runtimelocator.Installation{}, fmt.Errorf("launcher: discovering runtime installations: %w", err)
	}

	return runtimelocator.Select(candidates, current, c)
}
