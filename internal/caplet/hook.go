// Package caplet implements the attribute-set transformer pipeline
// spec.md §4.8 substitutes for the original's dynamic subclass dispatch:
// an ordered list of typed override hooks, each seeing the previous
// hook's view, with the base capsule as the innermost layer.
package caplet

import "os/exec"

// AttributeLookup resolves a manifest attribute against the base
// capsule (the effective OS/runtime/mode-selected manifest value,
// before any caplet override). Caplets that need to read a manifest
// value to decide their own behavior (rather than override one for the
// layers below them) use this, since Hook.Attribute only ever sees the
// value already produced by earlier hooks in the chain.
type AttributeLookup func(name string) (string, bool)

// MountFunc spawns (or wraps the spawning of) the child process. A
// caplet's MountProcess hook receives the previous layer's MountFunc and
// returns one that wraps it, letting an outer caplet observe or modify
// the command before/after an inner layer mounts it.
type MountFunc func(cmd *exec.Cmd) error

// Hook is the set of override points a caplet may participate in. Every
// method receives the current accumulated view (as built by every
// earlier hook in the chain, or the base capsule for the first one) and
// returns the view as this hook wants it to look to the next layer.
type Hook interface {
	// Name identifies the caplet for logging and the Caplet-Condition
	// lookup.
	Name() string
	// Attribute overrides a single manifest attribute lookup.
	Attribute(name string, value string, found bool) (string, bool)
	BuildClassPath(prev []string) []string
	BuildJVMArgs(prev []string) []string
	BuildSystemProperties(prev map[string]string) map[string]string
	BuildArgs(prev []string) []string
	AppID(prev string) string
	MountProcess(prev MountFunc) MountFunc
}

// Base is embedded by concrete caplets so they only need to implement
// the hooks they actually change; every other hook passes its input
// through unmodified.
type Base struct {
	CapletName string
}

func (b Base) Name() string { return b.CapletName }

func (b Base) Attribute(name string, value string, found bool) (string, bool) {
	return value, found
}

func (b Base) BuildClassPath(prev []string) []string { return prev }

func (b Base) BuildJVMArgs(prev []string) []string { return prev }

func (b Base) BuildSystemProperties(prev map[string]string) map[string]string { return prev }

func (b Base) BuildArgs(prev []string) []string { return prev }

func (b Base) AppID(prev string) string { return prev }

func (b Base) MountProcess(prev MountFunc) MountFunc { return prev }
