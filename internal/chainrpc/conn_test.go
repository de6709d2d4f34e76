package chainrpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testNode answers JSON-RPC requests over a websocket the way a chain node
// would, using the supplied handler to produce results.
func testNode(t *testing.T, handle func(method string, params []json.RawMessage) (interface{}, *RPCError)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer ws.Close()
		for {
			var req struct {
				ID     uint64            `json:"id"`
				Method string            `json:"method"`
				Params []json.RawMessage `json:"params"`
			}
			if err := ws.ReadJSON(&req); err != nil {
				return
			}
			result, rpcErr := handle(req.Method, req.Params)
			resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
			if rpcErr != nil {
				resp["error"] = rpcErr
			} else {
				resp["result"] = result
			}
			if err := ws.WriteJSON(resp); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func dialTestNode(t *testing.T, server *httptest.Server) *Conn {
	t.Helper()
	endpoint := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, err := Dial(context.Background(), endpoint)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestCallRoundTrip(t *testing.T) {
	server := testNode(t, func(method string, params []json.RawMessage) (interface{}, *RPCError) {
		assert.Equal(t, "state_getStorage", method)
		return "0x0a00", nil
	})
	conn := dialTestNode(t, server)

	var result *string
	err := conn.Call(context.Background(), "state_getStorage", []interface{}{"0xdead"}, &result)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "0x0a00", *result)
}

func TestCallNullResult(t *testing.T) {
	server := testNode(t, func(string, []json.RawMessage) (interface{}, *RPCError) {
		return nil, nil
	})
	conn := dialTestNode(t, server)

	var result *string
	err := conn.Call(context.Background(), "state_getStorage", []interface{}{"0xdead"}, &result)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestCallNodeError(t *testing.T) {
	server := testNode(t, func(string, []json.RawMessage) (interface{}, *RPCError) {
		return nil, &RPCError{Code: 1010, Message: "Invalid Transaction"}
	})
	conn := dialTestNode(t, server)

	err := conn.Call(context.Background(), "author_submitExtrinsic", []interface{}{"0x00"}, nil)
	require.Error(t, err)

	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, 1010, rpcErr.Code)
}

func TestCallAfterClose(t *testing.T) {
	server := testNode(t, func(string, []json.RawMessage) (interface{}, *RPCError) {
		return nil, nil
	})
	conn := dialTestNode(t, server)
	require.NoError(t, conn.Close())

	err := conn.Call(context.Background(), "chain_getHeader", nil, nil)
	assert.ErrorIs(t, err, ErrConnClosed)
}

func TestDialFailureIsTransport(t *testing.T) {
	_, err := Dial(context.Background(), "ws://127.0.0.1:1")
	require.ErrorIs(t, err, ErrTransport)
}
