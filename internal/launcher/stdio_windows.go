//go:build windows

package launcher

import (
	"fmt"
	"io"
	"math/rand"
	"os/exec"

	"github.com/Microsoft/go-winio"
)

// wireStdioPipes relays stdin/stdout/stderr to cmd over named pipes
// instead of handing the child direct, possibly-unreliable handle
// inheritance — the Windows pre-9-JVM workaround spec.md §4.7 calls
// for. Grounded on the teacher's own named-pipe transport
// (provider/grpc/socket/pipe_windows.go's winio.ListenPipe +
// winio.DialPipe pairing), repurposed here for stdio relaying instead
// of a gRPC channel.
func wireStdioPipes(cmd *exec.Cmd, stdin io.Reader, stdout, stderr io.Writer) (func(), error) {
	inServer, inClient, err := pipePair("stdin")
	if err != nil {
		return nil, fmt.Errorf("launcher: stdio workaround: %w", err)
	}
	outServer, outClient, err := pipePair("stdout")
	if err != nil {
		inServer.Close()
		inClient.Close()
		return nil, fmt.Errorf("launcher: stdio workaround: %w", err)
	}
	errServer, errClient, err := pipePair("stderr")
	if err != nil {
		inServer.Close()
		inClient.Close()
		outServer.Close()
		outClient.Close()
		return nil, fmt.Errorf("launcher: stdio workaround: %w", err)
	}

	cmd.Stdin = inClient
	cmd.Stdout = outClient
	cmd.Stderr = errClient

	go relay(inServer, stdin)
	go relay(stdout, outServer)
	go relay(stderr, errServer)

	return func() {
		inServer.Close()
		inClient.Close()
		outServer.Close()
		outClient.Close()
		errServer.Close()
		errClient.Close()
	}, nil
}

// pipePair opens a fresh named pipe and returns both ends: the server
// end (relayed to/from the real stdio streams) and the client end
// handed to cmd's Stdin/Stdout/Stderr fields.
func pipePair(label string) (io.ReadWriteCloser, io.ReadWriteCloser, error) {
	name := fmt.Sprintf(`\\.\pipe\capsule-%s-%d`, label, rand.Int())
	ln, err := winio.ListenPipe(name, nil)
	if err != nil {
		return nil, nil, err
	}

	client, err := winio.DialPipe(name, nil)
	if err != nil {
		ln.Close()
		return nil, nil, err
	}
	server, err := ln.Accept()
	ln.Close()
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return server, client, nil
}
