package manifest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleIndex = `Application-ID: com.acme.widget
Application-Class: com.acme.Main
JVM-Args: -Xmx128m
Args: one
Environment-Variables: FOO=bar

[Linux]
JVM-Args: -Dlinux=true
Script: run.sh

[Runtime-9]
Min-Update-Version: 7=85 1.8=21

[prod]
JVM-Args: -Dprod=true
Environment-Variables: FOO=overridden BAZ=qux

[prod-Linux]
Args: prod-linux-arg
`

func mustParse(t *testing.T, s string) *Manifest {
	t.Helper()
	m, err := Parse(strings.NewReader(s))
	require.NoError(t, err)
	return m
}

func TestParseAndGet(t *testing.T) {
	m := mustParse(t, sampleIndex)

	v, ok := m.Get(ApplicationID, SelectionContext{})
	require.True(t, ok)
	assert.Equal(t, "com.acme.widget", v)

	v, ok = m.Get(ApplicationClass, SelectionContext{GOOS: "linux"})
	require.True(t, ok)
	assert.Equal(t, "com.acme.Main", v)
}

func TestGetListAccumulatesAcrossSections(t *testing.T) {
	m := mustParse(t, sampleIndex)

	args := m.GetList(JVMArgs, SelectionContext{GOOS: "linux", Mode: "prod"})
	assert.Equal(t, []string{"-Xmx128m", "-Dlinux=true", "-Dprod=true"}, args)

	// Invariant 7: GetList == concat(main, matching sections in order).
	onlyLinux := m.GetList(JVMArgs, SelectionContext{GOOS: "linux"})
	assert.Equal(t, []string{"-Xmx128m", "-Dlinux=true"}, onlyLinux)
}

func TestGetListIsDeterministicAndIdempotent(t *testing.T) {
	m := mustParse(t, sampleIndex)
	ctx := SelectionContext{GOOS: "linux", Mode: "prod", RuntimeMajor: 9}
	first := m.GetList(Args, ctx)
	second := m.GetList(Args, ctx)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"one", "prod-linux-arg"}, first)
}

func TestGetMapOverridesByKeyAcrossSections(t *testing.T) {
	m := mustParse(t, sampleIndex)
	envs := m.GetMap(EnvironmentVariables, SelectionContext{Mode: "prod"}, "")
	assert.Equal(t, "overridden", envs["FOO"])
	assert.Equal(t, "qux", envs["BAZ"])
}

func TestGetMapDefaultValue(t *testing.T) {
	m := mustParse(t, `Min-Update-Version: 1.7
`)
	vals := m.GetMap(MinUpdateVersion, SelectionContext{}, "present")
	assert.Equal(t, "present", vals["1.7"])
}

func TestRuntimeSectionSelection(t *testing.T) {
	m := mustParse(t, sampleIndex)
	vals := m.GetMap(MinUpdateVersion, SelectionContext{RuntimeMajor: 9}, "")
	assert.Equal(t, "85", vals["7"])
	assert.Equal(t, "21", vals["1.8"])

	vals = m.GetMap(MinUpdateVersion, SelectionContext{RuntimeMajor: 8}, "")
	assert.Empty(t, vals)
}

func TestCrossSectionIdentityIsStructuralError(t *testing.T) {
	_, err := Parse(strings.NewReader(`Application-ID: main-id

[Linux]
Application-ID: linux-id
`))
	require.Error(t, err)
	var misuse *ErrAttributeMisuse
	assert.ErrorAs(t, err, &misuse)
}

func TestContinuationLines(t *testing.T) {
	m := mustParse(t, "JVM-Args: -Xmx128m\n -Xms64m\n")
	args := m.GetList(JVMArgs, SelectionContext{})
	assert.Equal(t, []string{"-Xmx128m", "-Xms64m"}, args)
}

func TestUnknownAttributePreserved(t *testing.T) {
	m := mustParse(t, "X-Custom-Attr: hello\n")
	v, ok := m.Get("X-Custom-Attr", SelectionContext{})
	require.True(t, ok)
	assert.Equal(t, "hello", v)
}

func TestHas(t *testing.T) {
	m := mustParse(t, sampleIndex)
	assert.True(t, m.Has(Script, SelectionContext{GOOS: "linux"}))
	assert.False(t, m.Has(Script, SelectionContext{GOOS: "windows"}))
}

func TestModes(t *testing.T) {
	m := mustParse(t, sampleIndex)
	assert.ElementsMatch(t, []string{"prod"}, m.Modes())
}

func TestMatchesOS(t *testing.T) {
	assert.True(t, MatchesOS("POSIX", "linux"))
	assert.True(t, MatchesOS("POSIX", "darwin"))
	assert.False(t, MatchesOS("POSIX", "windows"))
	assert.True(t, MatchesOS("Windows", "windows"))
}

func TestValidateMode(t *testing.T) {
	m := mustParse(t, sampleIndex)
	require.NoError(t, m.ValidateMode(""))
	require.NoError(t, m.ValidateMode("prod"))

	err := m.ValidateMode("staging")
	require.Error(t, err)
	var unknown *ErrUnknownMode
	assert.ErrorAs(t, err, &unknown)
}

func TestResolutionIsDeterministicAcrossRepeatedCalls(t *testing.T) {
	// Invariant 1: resolution is deterministic and idempotent.
	m := mustParse(t, sampleIndex)
	ctx := SelectionContext{GOOS: "linux", Mode: "prod"}
	a, _ := m.Get(ApplicationClass, ctx)
	b, _ := m.Get(ApplicationClass, ctx)
	assert.Equal(t, a, b)
}
