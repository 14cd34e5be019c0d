package ipc

import (
	"context"
	"fmt"
	"net"
)

// DialNet connects to a long-running resolver daemon over a TCP or unix
// socket address, the same way the teacher dials a language server over
// a unix domain socket (provider/grpc/socket/uds.go's
// jsonrpc2.NetDialer) rather than spawning a subprocess. The returned
// closer must be closed once the Stream is no longer needed; Stream
// itself has no Close method.
func DialNet(ctx context.Context, network, address string) (Stream, func() error, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, network, address)
	if err != nil {
		return nil, nil, fmt.Errorf("ipc: dialing resolver at %s://%s: %w", network, address, err)
	}
	return NewHeaderStream(conn, conn), conn.Close, nil
}
