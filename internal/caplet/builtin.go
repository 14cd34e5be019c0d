package caplet

import (
	"os/exec"
	"strings"

	"github.com/go-logr/logr"
)

func init() {
	Register("Log-Capsule", newLogCaplet)
	Register("Trace-Mount", newTraceMountCaplet)
}

// logCaplet raises JVM verbosity when the manifest attribute capsule.log
// is "debug", so a capsule can ask for a more chatty child JVM without
// editing JVM-Args by hand. The launcher's own --log/CAPSULE_LOG level is
// not consulted.
type logCaplet struct {
	Base
	log  logr.Logger
	attr AttributeLookup
}

func newLogCaplet(log logr.Logger, attr AttributeLookup) Hook {
	return &logCaplet{Base: Base{CapletName: "Log-Capsule"}, log: log, attr: attr}
}

func (c *logCaplet) BuildJVMArgs(prev []string) []string {
	level, found := c.attr("capsule.log")
	if !found || level != "debug" {
		return prev
	}
	for _, arg := range prev {
		if arg == "-verbose:class" {
			return prev
		}
	}
	c.log.V(1).Info("debug logging requested, adding -verbose:class")
	return append(prev, "-verbose:class")
}

// traceMountCaplet logs the final argv immediately before the child
// process is started, the outermost observation point spec.md §4.8's
// mount_process hook exists for.
type traceMountCaplet struct {
	Base
	log logr.Logger
}

func newTraceMountCaplet(log logr.Logger, attr AttributeLookup) Hook {
	return &traceMountCaplet{Base: Base{CapletName: "Trace-Mount"}, log: log}
}

func (c *traceMountCaplet) MountProcess(prev MountFunc) MountFunc {
	return func(cmd *exec.Cmd) error {
		c.log.V(1).Info("spawning child process", "argv", strings.Join(cmd.Args, " "))
		return prev(cmd)
	}
}
