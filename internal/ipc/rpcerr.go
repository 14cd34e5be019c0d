package ipc

import (
	"strings"
)

var errFileClosed = "file already closed"
var errBrokenPipe = "broken pipe"

// IsRPCClosed reports whether err indicates the resolver subprocess's
// pipe has already gone away, as opposed to a protocol-level failure.
func IsRPCClosed(err error) bool {
	var errMsg = err.Error()
	return strings.HasSuffix(errMsg, errFileClosed) || strings.HasSuffix(errMsg, errBrokenPipe)
}
