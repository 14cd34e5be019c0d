package caplet

import (
	"os/exec"

	"github.com/go-logr/logr"
)

// Chain applies an ordered list of hooks left to right: hooks[0] sees
// the base capsule's own view first, and each later hook sees the
// previous hook's view (spec.md §4.8 "Order is left-to-right; each
// caplet sees the previous caplet's view. The base capsule is the
// innermost layer."). Builder methods therefore fold from the first
// hook to the last, so that hooks[len-1]'s transformation is the one a
// caller ultimately observes.
type Chain struct {
	hooks []Hook
	log   logr.Logger
}

// NewChain builds a Chain from hooks in Caplets declaration order.
func NewChain(hooks []Hook, log logr.Logger) *Chain {
	return &Chain{hooks: hooks, log: log}
}

// Attribute resolves name by folding every hook's Attribute override
// over the base manifest's lookup (base, baseFound).
func (c *Chain) Attribute(name, base string, baseFound bool) (string, bool) {
	value, found := base, baseFound
	for _, h := range c.hooks {
		value, found = h.Attribute(name, value, found)
	}
	return value, found
}

// BuildClassPath folds every hook's BuildClassPath override over base.
func (c *Chain) BuildClassPath(base []string) []string {
	out := base
	for _, h := range c.hooks {
		out = h.BuildClassPath(out)
	}
	return out
}

// BuildJVMArgs folds every hook's BuildJVMArgs override over base.
func (c *Chain) BuildJVMArgs(base []string) []string {
	out := base
	for _, h := range c.hooks {
		out = h.BuildJVMArgs(out)
	}
	return out
}

// BuildSystemProperties folds every hook's BuildSystemProperties
// override over base.
func (c *Chain) BuildSystemProperties(base map[string]string) map[string]string {
	out := base
	for _, h := range c.hooks {
		out = h.BuildSystemProperties(out)
	}
	return out
}

// BuildArgs folds every hook's BuildArgs override over base.
func (c *Chain) BuildArgs(base []string) []string {
	out := base
	for _, h := range c.hooks {
		out = h.BuildArgs(out)
	}
	return out
}

// AppID folds every hook's AppID override over base.
func (c *Chain) AppID(base string) string {
	out := base
	for _, h := range c.hooks {
		out = h.AppID(out)
	}
	return out
}

// MountProcess wraps base (the plain os/exec spawn) with every hook's
// MountProcess override, declaration order first, so the last-declared
// caplet's wrapper is the outermost one actually invoked by the
// launcher.
func (c *Chain) MountProcess(base MountFunc) MountFunc {
	out := base
	for _, h := range c.hooks {
		out = h.MountProcess(out)
	}
	return out
}

// DefaultMount is the base capsule's own MountFunc: start and detach.
// It is the innermost layer every caplet's MountProcess hook wraps.
func DefaultMount(cmd *exec.Cmd) error {
	return cmd.Start()
}
