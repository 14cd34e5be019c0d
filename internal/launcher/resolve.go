package launcher

import (
	"runtime"

	"github.com/go-logr/logr"

	"github.com/capsulerun/capsule/internal/cachepath"
	"github.com/capsulerun/capsule/internal/caplet"
	"github.com/capsulerun/capsule/internal/manifest"
)

// preliminaryContext is the pre-runtime-selection SelectionContext
// (spec.md §9 "Process-wide singletons" resolution-order note): runtime
// constraints, the Caplets list, and the application ID must all be read
// before a runtime has been chosen, so no Runtime-N section can apply
// yet.
func preliminaryContext(mode string) manifest.SelectionContext {
	return manifest.SelectionContext{GOOS: runtime.GOOS, RuntimeMajor: 0, Mode: mode}
}

// finalContext is used once the runtime is known, so Runtime-N sections
// matching the selected major version take part in every subsequent
// attribute read (spec.md §3 "Runtime-N" section category).
func finalContext(mode string, runtimeMajor int) manifest.SelectionContext {
	return manifest.SelectionContext{GOOS: runtime.GOOS, RuntimeMajor: runtimeMajor, Mode: mode}
}

// resolveCaplets builds the active caplet chain from the manifest's
// Caplets/Caplet-Condition attributes, evaluated under the preliminary
// context since caplets themselves cannot depend on the runtime they
// help select (spec.md §4.8 supplement, "Caplet-Condition").
func resolveCaplets(m *manifest.Manifest, ctx manifest.SelectionContext, log logr.Logger) (*caplet.Chain, error) {
	names := m.GetList(manifest.Caplets, ctx)
	if len(names) == 0 {
		return caplet.NewChain(nil, log), nil
	}
	conditions := m.GetMap(manifest.CapletCondition, ctx, "")

	attrs := map[string]string{}
	for _, name := range names {
		if raw, ok := m.Get(name, ctx); ok {
			attrs[name] = raw
		}
	}
	active, err := caplet.SelectActive(names, conditions, attrs)
	if err != nil {
		return nil, wrapExit(ExitAttributeMisuse, "attribute-misuse", err)
	}

	hooks, err := caplet.Resolve(active, log, lookupFunc(m, ctx))
	if err != nil {
		return nil, wrapExit(ExitAttributeMisuse, "attribute-misuse", err)
	}
	return caplet.NewChain(hooks, log), nil
}

// resolveAppID derives the application ID (spec.md §3 "ID is stable:
// either explicit, or derived deterministically from the main artifact
// coordinates or main class name"), then lets the caplet chain override
// it (spec.md §4.8's app_id hook).
func resolveAppID(rm resolvedManifest, explicit string) (string, error) {
	if explicit != "" {
		base := rm.chain.AppID(explicit)
		if err := cachepath.ValidateAppID(base); err != nil {
			return "", wrapExit(ExitAttributeMisuse, "attribute-misuse", err)
		}
		return base, nil
	}

	declaredID, _ := rm.get(manifest.ApplicationID)
	mainArtifact, _ := rm.get(manifest.ApplicationArtifact)
	mainClass, _ := rm.get(manifest.ApplicationClass)

	base := cachepath.DeriveAppID(declaredID, mainArtifact, mainClass)
	base = rm.chain.AppID(base)
	if err := cachepath.ValidateAppID(base); err != nil {
		return "", wrapExit(ExitAttributeMisuse, "attribute-misuse", err)
	}
	return base, nil
}
