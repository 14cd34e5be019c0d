package launcher

import (
	"io"
	"os/exec"
	"runtime"
)

// stdioWorkaroundNeeded reports whether the platform stdio inheritance
// defect spec.md §4.7 names applies: runtimes older than 9 on Windows
// don't reliably inherit standard handles across CreateProcess.
func stdioWorkaroundNeeded(runtimeMajor int) bool {
	return runtime.GOOS == "windows" && runtimeMajor < 9
}

// wireStdio attaches stdin/stdout/stderr to cmd: direct handle
// inheritance by default (spec.md §4.7 "inherit by default"), or
// named-pipe relaying through forwarding goroutines when the
// inheritance-defect workaround is needed. Returns a cleanup func to
// run once the child has exited.
func wireStdio(cmd *exec.Cmd, stdin io.Reader, stdout, stderr io.Writer, workaround bool) (func(), error) {
	if !workaround {
		cmd.Stdin = stdin
		cmd.Stdout = stdout
		cmd.Stderr = stderr
		return func() {}, nil
	}
	return wireStdioPipes(cmd, stdin, stdout, stderr)
}

// relay forwards from src to dst until src is exhausted or a write
// fails, writing each chunk fully before the next read (spec.md §5
// stdio ordering guarantee: "each chunk read from source must be fully
// written to sink before the next read").
func relay(dst io.Writer, src io.Reader) {
	buf := make([]byte, 32*1024)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return
			}
		}
		if err != nil {
			return
		}
	}
}
