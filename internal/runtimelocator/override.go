package runtimelocator

import (
	"context"
	"fmt"
	"path/filepath"
)

// FromHome builds an Installation for an explicit JAVA_HOME-style
// override, bypassing discovery and matching entirely (spec.md §4.4
// "Overrides: capsule.java.home and capsule.java.cmd bypass discovery and
// matching entirely").
func (l *Locator) FromHome(ctx context.Context, home string) (Installation, error) {
	bin := filepath.Join(home, "bin", binaryName())
	v, err := l.probe(ctx, bin)
	if err != nil {
		return Installation{}, fmt.Errorf("runtimelocator: overridden java home %s: %w", home, err)
	}
	return Installation{Version: v, Home: home, IsJDK: looksLikeJDK(filepath.Base(home), home)}, nil
}

// FromCommand builds an Installation around an explicit runtime binary
// path, used for the capsule.java.cmd override. Home is derived as the
// binary's grandparent directory (".../bin/java" -> "...").
func (l *Locator) FromCommand(ctx context.Context, cmdPath string) (Installation, error) {
	v, err := l.probe(ctx, cmdPath)
	if err != nil {
		return Installation{}, fmt.Errorf("runtimelocator: overridden java command %s: %w", cmdPath, err)
	}
	home := filepath.Dir(filepath.Dir(cmdPath))
	return Installation{Version: v, Home: home, IsJDK: looksLikeJDK(filepath.Base(home), home)}, nil
}
