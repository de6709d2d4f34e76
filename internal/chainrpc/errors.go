package chainrpc

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport marks channel failures: timeouts, disconnects and
	// malformed responses. Retrying is the caller's decision.
	ErrTransport = errors.New("chainrpc: transport failure")

	// ErrDecode marks responses that claim success but whose payload
	// cannot be decoded.
	ErrDecode = errors.New("chainrpc: payload decode failure")

	ErrConnClosed = errors.New("chainrpc: connection is closed")
)

// RPCError is a JSON-RPC error object reported by the node itself.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("node returned error %d: %s", e.Code, e.Message)
}
