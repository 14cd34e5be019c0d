// Package ipc is a minimal JSON RPC 2 client used to talk to an
// external dependency resolver subprocess or daemon over a framed
// stream (https://www.jsonrpc.org/specification). The resolver's four
// operations (resolve, resolveRoot, latestVersion, printTree) are all
// calls the launcher issues and waits on; the resolver never sends an
// unsolicited request back, so Conn only ever needs to originate calls
// and demultiplex their responses.
package ipc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-logr/logr"
)

// Conn is a JSON RPC 2 client connection to a resolver subprocess or
// daemon. Every outgoing call is throttled through a BackoffHandler
// keyed by method and parameters, so a resolver that is failing
// repeatedly for the same coordinate doesn't get hammered.
type Conn struct {
	seq       int64 // must only be accessed using atomic operations
	backoff   *BackoffHandler
	stream    Stream
	pendingMu sync.Mutex // protects the pending map
	pending   map[ID]chan *WireResponse
	logger    logr.Logger
}

// NewErrorf builds a Error struct for the supplied message and code.
// If args is not empty, message and args will be passed to Sprintf.
func NewErrorf(code int64, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewConn creates a new connection object around the supplied stream.
// You must call Run for the connection to be active.
func NewConn(s Stream, log logr.Logger) *Conn {
	return &Conn{
		backoff: NewBackoffHandler(log),
		stream:  s,
		pending: make(map[ID]chan *WireResponse),
		logger:  log,
	}
}

type RPCUnmarshalError struct {
	Json string
	Err  error
}

func (e *RPCUnmarshalError) Error() string {
	return fmt.Sprintf("tried to unmarshal: %v\ngot error: %v", e.Json, e.Err)
}

// Call sends a resolver request over the connection and waits for its
// response. If the response is not an error, it is decoded into
// result, which must be of a type json.Unmarshal can target.
func (c *Conn) Call(ctx context.Context, method string, params, result interface{}) (err error) {
	id := ID{Number: atomic.AddInt64(&c.seq, 1)}
	jsonParams, err := marshalToRaw(params)
	if err != nil {
		return fmt.Errorf("marshalling call parameters: %v", err)
	}
	request := &WireRequest{
		ID:     &id,
		Method: method,
		Params: jsonParams,
	}
	data, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("marshalling call request: %v", err)
	}

	c.backoff.BeforeRequest(method, jsonParams)

	// we have to add ourselves to the pending map before we send, otherwise we
	// are racing the response
	rchan := make(chan *WireResponse)
	c.pendingMu.Lock()
	c.pending[id] = rchan
	c.pendingMu.Unlock()
	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		c.backoff.AfterRequest(method, jsonParams, err)
	}()

	if _, err = c.stream.Write(ctx, data); err != nil {
		// sending failed, we will never get a response, so don't leave it pending
		return err
	}
	select {
	case response := <-rchan:
		if response.Error != nil {
			err = response.Error
			return err
		}
		if result == nil || response.Result == nil {
			return nil
		}
		if uerr := json.Unmarshal(*response.Result, result); uerr != nil {
			err = &RPCUnmarshalError{string(*response.Result), uerr}
			return err
		}
		return nil
	case <-ctx.Done():
		err = ctx.Err()
		return err
	}
}

// Run reads responses off the stream until it is closed or returns an
// error, dispatching each one to the Call waiting on its request ID.
// It must be called exactly once for each Conn, normally from its own
// goroutine.
func (c *Conn) Run(runCtx context.Context) error {
	c.logger.V(5).Info("starting to run resolver rpc connection")
	for {
		data, _, err := c.stream.Read(runCtx)
		if err != nil {
			return err
		}
		var response WireResponse
		if err := json.Unmarshal(data, &response); err != nil {
			c.logger.V(2).Info("discarding malformed resolver response", "error", err.Error())
			continue
		}
		if response.ID == nil {
			c.logger.V(2).Info("discarding resolver message with no request id")
			continue
		}
		c.pendingMu.Lock()
		rchan, ok := c.pending[*response.ID]
		if ok {
			delete(c.pending, *response.ID)
		}
		c.pendingMu.Unlock()
		if ok {
			rchan <- &response
			close(rchan)
		}
	}
}

func marshalToRaw(obj interface{}) (*json.RawMessage, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	raw := json.RawMessage(data)
	return &raw, nil
}
