package dependency

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/go-logr/logr"

	"github.com/capsulerun/capsule/internal/ipc"
)

// ExternalResolver is the façade over the external dependency resolver
// collaborator (spec.md §1 "a dependency resolver... The core calls it
// but does not implement it"). Its four operations are carried as
// JSON-RPC calls over whatever Stream it was built with — a spawned
// subprocess's stdio, or a long-running daemon reached over a network
// address — mirroring the teacher's own support for both transports
// (jsonrpc2.NewHeaderStream for a spawned process, jsonrpc2.NetDialer
// for a long-running one).
type ExternalResolver struct {
	conn   *ipc.Conn
	log    logr.Logger
	close  func() error
	cancel context.CancelFunc
}

// NewSubprocessResolver spawns the resolver helper process named by
// command and wires its stdio exactly the way the teacher's
// javaProvider.Init spawns jdtls and talks to it over
// jsonrpc2.NewHeaderStream(stdout, stdin).
func NewSubprocessResolver(ctx context.Context, command string, args []string, log logr.Logger) (*ExternalResolver, error) {
	runCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(runCtx, command, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("dependency: wiring resolver stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("dependency: wiring resolver stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("dependency: starting resolver %s: %w", command, err)
	}

	r := newResolverConn(ipc.NewHeaderStream(stdout, stdin), log, cancel, func() error {
		_ = stdin.Close()
		return cmd.Wait()
	})
	go r.run(runCtx)
	return r, nil
}

// NewNetResolver connects to a long-running resolver daemon already
// listening on network/address (e.g. a unix socket, grounded on the
// teacher's provider/grpc/socket/uds.go dial pattern).
func NewNetResolver(ctx context.Context, network, address string, log logr.Logger) (*ExternalResolver, error) {
	runCtx, cancel := context.WithCancel(ctx)
	stream, closeConn, err := ipc.DialNet(runCtx, network, address)
	if err != nil {
		cancel()
		return nil, err
	}
	r := newResolverConn(stream, log, cancel, closeConn)
	go r.run(runCtx)
	return r, nil
}

func newResolverConn(stream ipc.Stream, log logr.Logger, cancel context.CancelFunc, close func() error) *ExternalResolver {
	conn := ipc.NewConn(stream, log)
	return &ExternalResolver{conn: conn, log: log, close: close, cancel: cancel}
}

func (r *ExternalResolver) run(ctx context.Context) {
	if err := r.conn.Run(ctx); err != nil && ctx.Err() == nil {
		r.log.Error(err, "external dependency resolver connection ended")
	}
}

// Close tears down the connection and, for a spawned subprocess, waits
// for it to exit.
func (r *ExternalResolver) Close() error {
	r.cancel()
	if r.close == nil {
		return nil
	}
	err := r.close()
	if err != nil && (err == io.EOF || ipc.IsRPCClosed(err)) {
		return nil
	}
	return err
}

type resolveParams struct {
	Coordinate string `json:"coordinate"`
	Type       string `json:"type"`
}

type resolveRootParams struct {
	Coordinate string `json:"coordinate"`
}

type latestVersionParams struct {
	Coordinate string `json:"coordinate"`
	Type       string `json:"type"`
}

type printTreeParams struct {
	Coordinates []string `json:"coordinates"`
}

// TreeNode is one node of a resolved dependency tree, suitable for
// direct YAML marshalling by internal/action.
type TreeNode struct {
	Coordinate string     `json:"coordinate" yaml:"coordinate"`
	Path       string     `json:"path,omitempty" yaml:"path,omitempty"`
	Children   []TreeNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// Resolve asks the external resolver for every file path satisfying
// coordinate (a jar, a native library, etc. — distinguished by typ).
func (r *ExternalResolver) Resolve(ctx context.Context, coordinate, typ string) ([]string, error) {
	var paths []string
	if err := r.conn.Call(ctx, "resolve", resolveParams{Coordinate: coordinate, Type: typ}, &paths); err != nil {
		return nil, fmt.Errorf("dependency: resolving %s: %w", coordinate, err)
	}
	return paths, nil
}

// ResolveRoot asks for the transitive closure of coordinate's own
// dependency graph, flattened to file paths.
func (r *ExternalResolver) ResolveRoot(ctx context.Context, coordinate string) ([]string, error) {
	var paths []string
	if err := r.conn.Call(ctx, "resolveRoot", resolveRootParams{Coordinate: coordinate}, &paths); err != nil {
		return nil, fmt.Errorf("dependency: resolving root %s: %w", coordinate, err)
	}
	return paths, nil
}

// LatestVersion asks the resolver for the newest version string known
// for a group:artifact coordinate (version omitted or a range).
func (r *ExternalResolver) LatestVersion(ctx context.Context, coordinate, typ string) (string, error) {
	var version string
	if err := r.conn.Call(ctx, "latestVersion", latestVersionParams{Coordinate: coordinate, Type: typ}, &version); err != nil {
		return "", fmt.Errorf("dependency: latest version of %s: %w", coordinate, err)
	}
	return version, nil
}

// PrintTree asks the resolver to describe the resolved dependency graph
// for a set of root coordinates, for internal/action's capsule.tree
// output.
func (r *ExternalResolver) PrintTree(ctx context.Context, coordinates []string) ([]TreeNode, error) {
	var tree []TreeNode
	if err := r.conn.Call(ctx, "printTree", printTreeParams{Coordinates: coordinates}, &tree); err != nil {
		return nil, fmt.Errorf("dependency: printing tree: %w", err)
	}
	return tree, nil
}
