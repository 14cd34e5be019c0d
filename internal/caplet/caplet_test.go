package caplet

import (
	"os/exec"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHook struct {
	Base
	classpathSuffix string
	mountCalls      *[]string
}

func (h *recordingHook) BuildClassPath(prev []string) []string {
	return append(append([]string{}, prev...), h.classpathSuffix)
}

func (h *recordingHook) MountProcess(prev MountFunc) MountFunc {
	return func(cmd *exec.Cmd) error {
		*h.mountCalls = append(*h.mountCalls, h.Name())
		return prev(cmd)
	}
}

func TestChainBuildClassPathAppliesLastDeclaredLast(t *testing.T) {
	first := &recordingHook{Base: Base{CapletName: "first"}, classpathSuffix: "first.jar"}
	second := &recordingHook{Base: Base{CapletName: "second"}, classpathSuffix: "second.jar"}
	chain := NewChain([]Hook{first, second}, logr.Discard())

	got := chain.BuildClassPath([]string{"base.jar"})
	assert.Equal(t, []string{"base.jar", "first.jar", "second.jar"}, got)
}

func TestChainMountProcessLastDeclaredRunsFirst(t *testing.T) {
	var calls []string
	first := &recordingHook{Base: Base{CapletName: "first"}, mountCalls: &calls}
	second := &recordingHook{Base: Base{CapletName: "second"}, mountCalls: &calls}
	chain := NewChain([]Hook{first, second}, logr.Discard())

	mount := chain.MountProcess(func(cmd *exec.Cmd) error {
		calls = append(calls, "base")
		return nil
	})
	require.NoError(t, mount(&exec.Cmd{}))
	assert.Equal(t, []string{"second", "first", "base"}, calls)
}

func TestChainWithNoHooksReturnsBaseUnchanged(t *testing.T) {
	chain := NewChain(nil, logr.Discard())
	assert.Equal(t, []string{"base.jar"}, chain.BuildClassPath([]string{"base.jar"}))
	assert.Equal(t, "app-1.0", chain.AppID("app-1.0"))
}

func TestEvaluateConditionOverSimpleAttribute(t *testing.T) {
	active, err := EvaluateCondition(`mode == "debug"`, map[string]string{"mode": "debug"})
	require.NoError(t, err)
	assert.True(t, active)

	active, err = EvaluateCondition(`mode == "debug"`, map[string]string{"mode": "prod"})
	require.NoError(t, err)
	assert.False(t, active)
}

func TestEvaluateConditionRejectsNonBooleanResult(t *testing.T) {
	_, err := EvaluateCondition(`1 + 1`, nil)
	assert.Error(t, err)
}

func TestSelectActiveKeepsUnconditionedCaplets(t *testing.T) {
	names := []string{"Log-Capsule", "Trace-Mount"}
	conditions := map[string]string{"Trace-Mount": `mode == "debug"`}

	got, err := SelectActive(names, conditions, map[string]string{"mode": "prod"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Log-Capsule"}, got)

	got, err = SelectActive(names, conditions, map[string]string{"mode": "debug"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Log-Capsule", "Trace-Mount"}, got)
}

func TestResolveUnknownCapletReturnsTypedError(t *testing.T) {
	attr := func(string) (string, bool) { return "", false }
	_, err := Resolve([]string{"com.example:NoSuchCaplet:1.0"}, logr.Discard(), attr)
	var unknown *ErrUnknownCaplet
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "com.example:NoSuchCaplet:1.0", unknown.Entry)
}

func TestResolveBuiltinCapletsByNameAndCoordinate(t *testing.T) {
	attr := func(name string) (string, bool) {
		if name == "capsule.log" {
			return "debug", true
		}
		return "", false
	}
	hooks, err := Resolve([]string{"Log-Capsule", "example:Trace-Mount:1.0"}, logr.Discard(), attr)
	require.NoError(t, err)
	require.Len(t, hooks, 2)
	assert.Equal(t, "Log-Capsule", hooks[0].Name())
	assert.Equal(t, "Trace-Mount", hooks[1].Name())
}

func TestLogCapletAddsVerboseFlagOnlyWhenDebug(t *testing.T) {
	debugAttr := func(string) (string, bool) { return "debug", true }
	h := newLogCaplet(logr.Discard(), debugAttr)
	assert.Equal(t, []string{"-verbose:class"}, h.BuildJVMArgs(nil))

	quietAttr := func(string) (string, bool) { return "quiet", true }
	h = newLogCaplet(logr.Discard(), quietAttr)
	assert.Equal(t, []string{"-ea"}, h.BuildJVMArgs([]string{"-ea"}))
}
