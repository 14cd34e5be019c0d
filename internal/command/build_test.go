package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAssemblesArgvInFixedOrder(t *testing.T) {
	in := Input{
		JVMArgs:           []string{"-ea"},
		BootClasspathArgs: []string{"-Xbootclasspath/a:ext.jar"},
		SystemProperties:  map[string]string{"capsule.app": "app-1.0"},
		ClassPath:         []string{"app.jar", "lib/a.jar"},
		Agents: []AgentSpec{
			{Path: "/agents/native.so", Native: true},
			{Path: "/agents/java-agent.jar", Args: "verbose"},
		},
		MainClass:        "com.example.Main",
		AppArgs:          []string{"--flag"},
		HostTrailingArgs: []string{"extra"},
	}
	got, err := Build(in)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"-ea",
		"-Xbootclasspath/a:ext.jar",
		"-Dcapsule.app=app-1.0",
		"-cp", "app.jar:lib/a.jar",
		"-agentpath:/agents/native.so",
		"-javaagent:/agents/java-agent.jar=verbose",
		"com.example.Main",
		"--flag",
		"extra",
	}, got)
}

func TestBuildUsesJarFlagWhenNoMainClass(t *testing.T) {
	got, err := Build(Input{MainJarPath: "/cache/app-1.0/app.jar"})
	require.NoError(t, err)
	assert.Equal(t, []string{"-jar", "/cache/app-1.0/app.jar"}, got)
}

func TestBuildFailsWithoutAnyEntryPoint(t *testing.T) {
	_, err := Build(Input{})
	require.ErrorIs(t, err, ErrNoEntryPoint)
}

func TestBuildOmitsClassPathFlagWhenEmpty(t *testing.T) {
	got, err := Build(Input{MainClass: "com.example.Main"})
	require.NoError(t, err)
	assert.Equal(t, []string{"com.example.Main"}, got)
}

func TestAgentSpecFlagRendersPlainJavaAgentWithoutArgs(t *testing.T) {
	a := AgentSpec{Path: "/agents/a.jar"}
	assert.Equal(t, "-javaagent:/agents/a.jar", a.flag())
}
