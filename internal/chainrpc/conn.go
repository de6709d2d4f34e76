// Package chainrpc maintains the single persistent JSON-RPC 2.0 websocket
// connection to the chain node. The channel is request/response: one call is
// in flight at a time, serialized by the connection mutex.
package chainrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pirskij/bittensor-quick-register/pkg/log"
)

const (
	defaultHandshakeTimeout = 30 * time.Second
	defaultRequestTimeout   = 60 * time.Second
)

type request struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// Conn is an exclusively-owned RPC connection: opened at construction,
// closed on shutdown.
type Conn struct {
	ws      *websocket.Conn
	timeout time.Duration

	mu     sync.Mutex
	nextID uint64
	closed bool
}

// Dial opens the websocket connection to the node endpoint.
func Dial(ctx context.Context, endpoint string) (*Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: defaultHandshakeTimeout}
	ws, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dialing %s: %v", ErrTransport, endpoint, err)
	}
	log.RPC.Info().Str("endpoint", endpoint).Msg("connected to node")
	return &Conn{ws: ws, timeout: defaultRequestTimeout}, nil
}

// Call performs one JSON-RPC request/response round trip. A nil result
// discards the response payload. Node-side errors are returned as *RPCError;
// channel failures wrap ErrTransport.
func (c *Conn) Call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnClosed
	}
	if params == nil {
		params = []interface{}{}
	}

	c.nextID++
	req := request{JSONRPC: "2.0", ID: c.nextID, Method: method, Params: params}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.ws.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if err := c.ws.WriteJSON(req); err != nil {
		return fmt.Errorf("%w: sending %s: %v", ErrTransport, method, err)
	}

	if err := c.ws.SetReadDeadline(deadline); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	for {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			return fmt.Errorf("%w: reading %s response: %v", ErrTransport, method, err)
		}
		var resp response
		if err := json.Unmarshal(msg, &resp); err != nil {
			return fmt.Errorf("%w: malformed %s response: %v", ErrTransport, method, err)
		}
		// Responses to stale requests are discarded.
		if resp.ID != req.ID {
			log.RPC.Debug().Uint64("id", resp.ID).Msg("discarding unexpected response")
			continue
		}
		if resp.Error != nil {
			return fmt.Errorf("%s: %w", method, resp.Error)
		}
		if result == nil {
			return nil
		}
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("%w: decoding %s result: %v", ErrDecode, method, err)
		}
		return nil
	}
}

// Close shuts the connection down. Further calls return ErrConnClosed.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.ws.Close()
}
