package mcp

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// GracefulShutdownTimeout bounds how long a listening server waits for
// in-flight requests to finish once a shutdown signal arrives.
const GracefulShutdownTimeout = 5 * time.Second

// StdioServerConnection adapts a pair of streams (conventionally os.Stdin
// and os.Stdout) into a ServerConnection: one newline-delimited JSON-RPC
// object per line in, one per Send out. Mirrors the client-side stdio
// transport's framing (transport_stdio.go) from the server's side of the
// pipe.
type StdioServerConnection struct {
	w       io.Writer
	scanner *bufio.Scanner
	inbound chan []byte
}

// NewStdioServerConnection starts reading r in the background; call Inbound
// to get the channel RegisterConnection should be given.
func NewStdioServerConnection(r io.Reader, w io.Writer) *StdioServerConnection {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	c := &StdioServerConnection{w: w, scanner: scanner, inbound: make(chan []byte)}
	go c.readLoop()
	return c
}

func (c *StdioServerConnection) readLoop() {
	defer close(c.inbound)
	for c.scanner.Scan() {
		line := c.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		data := make([]byte, len(line))
		copy(data, line)
		c.inbound <- data
	}
}

// Inbound returns the channel of raw messages read from the input stream.
func (c *StdioServerConnection) Inbound() <-chan []byte {
	return c.inbound
}

// Send writes data followed by a newline, matching the line-delimited wire
// format every MCP stdio peer expects.
func (c *StdioServerConnection) Send(ctx context.Context, data []byte) error {
	_, err := c.w.Write(append(data, '\n'))
	return err
}

// Close is a no-op: stdio has nothing to tear down beyond letting readLoop
// hit EOF on its own.
func (c *StdioServerConnection) Close(ctx context.Context) error {
	return nil
}

// wsServerConn adapts one accepted WebSocket connection into a
// ServerConnection.
type wsServerConn struct {
	ws *websocket.Conn
}

func (c *wsServerConn) Send(ctx context.Context, data []byte) error {
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *wsServerConn) Close(ctx context.Context) error {
	return c.ws.Close()
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// WebSocketUpgradeHandler accepts inbound WebSocket connections and
// registers each one with server under a freshly minted connection id.
func WebSocketUpgradeHandler(server *Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := wsUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		id := NewConnectionID()
		conn := &wsServerConn{ws: ws}
		inbound := make(chan []byte)
		go func() {
			defer close(inbound)
			for {
				_, data, err := ws.ReadMessage()
				if err != nil {
					return
				}
				inbound <- data
			}
		}()
		server.RegisterConnection(id, conn, inbound)
	})
}

// httpServerConn is a ServerConnection scoped to exactly one HTTP request:
// its Send delivers the dispatcher's single reply back to the handler
// blocked waiting on replyCh.
type httpServerConn struct {
	replyCh chan []byte
}

func (c *httpServerConn) Send(ctx context.Context, data []byte) error {
	select {
	case c.replyCh <- data:
	default:
	}
	return nil
}

func (c *httpServerConn) Close(ctx context.Context) error {
	return nil
}

// HTTPHandler serves one JSON-RPC request per POST body and writes back
// whatever the dispatcher replies with. A notification (which produces no
// reply) gets an empty 202 Accepted instead of waiting for a response that
// will never come.
func HTTPHandler(server *Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}

		id := NewConnectionID()
		replyCh := make(chan []byte, 1)
		conn := &httpServerConn{replyCh: replyCh}
		inbound := make(chan []byte, 1)
		inbound <- body
		close(inbound)

		if msg, err := Decode(body); err == nil && msg.Kind == KindNotification {
			server.RegisterConnection(id, conn, inbound)
			w.WriteHeader(http.StatusAccepted)
			return
		}

		server.RegisterConnection(id, conn, inbound)

		select {
		case data := <-replyCh:
			w.Header().Set("Content-Type", "application/json")
			w.Write(data)
		case <-time.After(30 * time.Second):
			w.WriteHeader(http.StatusAccepted)
		}
	})
}
