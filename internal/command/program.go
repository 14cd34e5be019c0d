package command

import (
	"path/filepath"
	"runtime"
)

// ResolveProgram picks the child process's program path: the OS-scoped
// startup script when one is declared, otherwise the selected runtime's
// own binary (spec.md §4.6 step 1). scriptPath is already resolved to
// an absolute, executable path inside the app cache by the caller.
func ResolveProgram(scriptPath, runtimeHome string) string {
	if scriptPath != "" {
		return scriptPath
	}
	return filepath.Join(runtimeHome, "bin", javaBinaryName())
}

func javaBinaryName() string {
	if runtime.GOOS == "windows" {
		return "java.exe"
	}
	return "java"
}
