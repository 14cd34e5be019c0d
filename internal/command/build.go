package command

import "fmt"

// AgentSpec is one resolved Java-Agents or Native-Agents entry.
type AgentSpec struct {
	Path string
	Args string
	// Native is true for a Native-Agents entry (-agentpath:), false for
	// a Java-Agents entry (-javaagent:).
	Native bool
}

func (a AgentSpec) flag() string {
	prefix := "-javaagent:"
	if a.Native {
		prefix = "-agentpath:"
	}
	flag := prefix + a.Path
	if a.Args != "" {
		flag += "=" + a.Args
	}
	return flag
}

// ErrNoEntryPoint is returned when neither a main class nor a main jar
// was resolved.
var ErrNoEntryPoint = fmt.Errorf("command: no Application-Class and no main artifact to run with -jar")

// Input is the fully-resolved set of pieces the command builder
// assembles into a child process argv (spec.md §4.6).
type Input struct {
	JVMArgs           []string
	BootClasspathArgs []string
	SystemProperties  map[string]string
	ClassPath         []string
	Agents            []AgentSpec
	MainClass         string
	MainJarPath       string
	AppArgs           []string
	HostTrailingArgs  []string
}

// Build renders Input into the runtime binary's argv, in the fixed
// order spec.md §4.6 describes (program itself is not included; see
// ResolveProgram).
func Build(in Input) ([]string, error) {
	if in.MainClass == "" && in.MainJarPath == "" {
		return nil, ErrNoEntryPoint
	}

	var args []string
	args = append(args, in.JVMArgs...)
	args = append(args, in.BootClasspathArgs...)
	args = append(args, AsDefineFlags(in.SystemProperties)...)
	if len(in.ClassPath) > 0 {
		args = append(args, "-cp", JoinClassPath(in.ClassPath))
	}
	for _, a := range in.Agents {
		args = append(args, a.flag())
	}
	if in.MainClass != "" {
		args = append(args, in.MainClass)
	} else {
		args = append(args, "-jar", in.MainJarPath)
	}
	args = append(args, in.AppArgs...)
	args = append(args, in.HostTrailingArgs...)
	return args, nil
}
