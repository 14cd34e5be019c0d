// Command capsule is the self-executing managed-runtime application
// launcher described in spec.md §1: given a capsule archive, it prepares
// the application's cache, resolves dependencies, selects a compatible
// runtime, and spawns the application as a child process.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/capsulerun/capsule/internal/launcher"
)

var (
	reset         bool
	logLevel      string
	mode          string
	javaHome      string
	javaCmd       string
	jvmArgs       []string
	defines       []string
	appID         string
	printVersion  bool
	listRuntimes  bool
	listModes     bool
	printTree     bool
	resolveOnly   bool
	repos         []string
	resolverCmd   string
	resolverArgs  []string
	resolverNet   string
	resolverAddr  string
	enableJaeger  bool
	jaegerAddress string

	rootCmd = &cobra.Command{
		Use:   "capsule <archive> [app args...]",
		Short: "Run a self-executing managed-runtime application archive",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCapsule,
	}
)

func init() {
	flags := rootCmd.Flags()
	flags.SetInterspersed(false)

	flags.BoolVar(&reset, "reset", false, "discard and re-prepare the application's cache (capsule.reset)")
	flags.StringVar(&logLevel, "log", "verbose", "log level: none|quiet|verbose|debug (capsule.log)")
	flags.StringVar(&mode, "mode", "", "manifest mode to apply (capsule.mode)")
	flags.StringVar(&javaHome, "java-home", "", "bypass runtime discovery, use this runtime installation directory (capsule.java.home)")
	flags.StringVar(&javaCmd, "java-cmd", "", "bypass runtime discovery, use this runtime binary (capsule.java.cmd)")
	flags.StringArrayVar(&jvmArgs, "jvm-arg", nil, "extra JVM argument, repeatable (capsule.jvm.args)")
	flags.StringArrayVarP(&defines, "define", "D", nil, "extra key=value system property, repeatable")
	flags.StringVar(&appID, "app-id", "", "override the derived application ID (capsule.app.id)")
	flags.BoolVar(&printVersion, "version", false, "print the application ID and version, then exit (capsule.version)")
	flags.BoolVar(&listRuntimes, "jvms", false, "list detected runtime installations, then exit (capsule.jvms)")
	flags.BoolVar(&listModes, "modes", false, "list the manifest's selectable modes, then exit (capsule.modes)")
	flags.BoolVar(&printTree, "tree", false, "print the resolved dependency tree, then exit (capsule.tree)")
	flags.BoolVar(&resolveOnly, "resolve", false, "resolve dependencies without launching, then exit (capsule.resolve)")
	flags.StringArrayVar(&repos, "repo", nil, "additional dependency repository, repeatable (CAPSULE_REPOS)")
	flags.StringVar(&resolverCmd, "resolver-command", "", "spawn this command as the external dependency resolver")
	flags.StringArrayVar(&resolverArgs, "resolver-arg", nil, "argument passed to --resolver-command, repeatable")
	flags.StringVar(&resolverNet, "resolver-network", "", "network for an external dependency-resolver daemon (e.g. tcp)")
	flags.StringVar(&resolverAddr, "resolver-address", "", "address for an external dependency-resolver daemon")
	flags.BoolVar(&enableJaeger, "enable-jaeger", false, "enable tracer exports to a Jaeger endpoint")
	flags.StringVar(&jaegerAddress, "jaeger-endpoint", "http://localhost:14268/api/traces", "Jaeger collector endpoint")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCapsule(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	level := os.Getenv("CAPSULE_LOG")
	if cmd.Flags().Changed("log") || level == "" {
		level = logLevel
	}

	cfg := launcher.Config{
		ArchivePath: args[0],
		AppArgs:     args[1:],

		Reset:    reset || envBool("CAPSULE_RESET"),
		Mode:     firstNonEmpty(mode, os.Getenv("CAPSULE_MODE")),
		LogLevel: level,

		JavaHome: firstNonEmpty(javaHome, os.Getenv("CAPSULE_JAVA_HOME")),
		JavaCmd:  firstNonEmpty(javaCmd, os.Getenv("CAPSULE_JAVA_CMD")),

		ExtraJVMArgs: append(jvmArgs, splitNonEmpty(os.Getenv("CAPSULE_JVM_ARGS"))...),
		HostDefines:  parseDefines(defines),

		ExplicitAppID: firstNonEmpty(appID, os.Getenv("CAPSULE_APP_ID")),

		ResolverCommand: resolverCmd,
		ResolverArgs:    resolverArgs,
		ResolverNetwork: resolverNet,
		ResolverAddress: resolverAddr,
		Repositories:    append(repos, splitNonEmpty(os.Getenv("CAPSULE_REPOS"))...),

		Env: os.Getenv,

		PrintVersion: printVersion,
		ListRuntimes: listRuntimes,
		ListModes:    listModes,
		PrintTree:    printTree,
		ResolveOnly:  resolveOnly,

		EnableTracing: enableJaeger,
		TraceEndpoint: jaegerAddress,
	}

	code, err := launcher.Run(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(code)
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}

func envBool(name string) bool {
	v := strings.TrimSpace(os.Getenv(name))
	return v == "1" || strings.EqualFold(v, "true")
}

func parseDefines(raw []string) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]string, len(raw))
	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		out[k] = v
	}
	return out
}
