package launcher

import (
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"

	"github.com/capsulerun/capsule/internal/caplet"
)

// spawnAndSupervise starts cmd through mount, then forwards the first
// SIGINT or SIGTERM it receives to the child (later signals of either
// kind are not forwarded), waits for it, and returns its
// exit code (spec.md §4.7 "install parent shutdown hook that
// terminates the child → wait for child → exit with its exit code";
// §5 ordering guarantee "shutdown hook runs exactly once").
func spawnAndSupervise(cmd *exec.Cmd, mount caplet.MountFunc, log logr.Logger) (int, error) {
	if err := mount(cmd); err != nil {
		return 0, wrapExit(ExitChildSpawnFailure, "child-spawn-failure", err)
	}
	log.Info("spawned child process", "pid", cmd.Process.Pid, "argv", cmd.Args)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	forwarded := false
	for {
		select {
		case sig := <-sigCh:
			if forwarded {
				continue
			}
			forwarded = true
			log.Info("forwarding signal to child", "signal", sig.String())
			_ = cmd.Process.Signal(sig)
		case err := <-done:
			return exitCodeFromWait(cmd, err, log)
		}
	}
}

// exitCodeFromWait extracts the child's exit code from cmd.Wait's
// result, per spec.md §8 invariant 5: "the launcher's exit code equals
// the child's exit code whenever the child is spawned."
func exitCodeFromWait(cmd *exec.Cmd, err error, log logr.Logger) (int, error) {
	if err == nil {
		return cmd.ProcessState.ExitCode(), nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	log.Error(err, "child process wait failed")
	return 0, wrapExit(ExitChildSpawnFailure, "child-spawn-failure", err)
}
