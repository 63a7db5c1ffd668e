package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newEchoWebSocketServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, data); err != nil {
				return
			}
		}
	}))
}

func wsURL(t *testing.T, server *httptest.Server) string {
	t.Helper()
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestWebSocketTransportRoundTrip(t *testing.T) {
	server := newEchoWebSocketServer(t)
	defer server.Close()

	transport := NewWebSocketTransport(WebSocketConfig{URL: wsURL(t, server)})
	ctx := context.Background()
	if err := transport.Connect(ctx); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer transport.Close(ctx)

	msg := []byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`)
	if err := transport.Send(ctx, msg); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	for {
		select {
		case ev := <-transport.Events():
			if ev.Kind == EventConnect {
				continue
			}
			if ev.Kind != EventMessage {
				t.Fatalf("Kind = %v, want EventMessage", ev.Kind)
			}
			if string(ev.Message) != string(msg) {
				t.Errorf("Message = %s, want %s", ev.Message, msg)
			}
			return
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for echoed message")
		}
	}
}

func TestWebSocketTransportSendBeforeConnect(t *testing.T) {
	transport := NewWebSocketTransport(WebSocketConfig{URL: "ws://127.0.0.1:1"})
	if err := transport.Send(context.Background(), []byte(`{}`)); err == nil {
		t.Fatal("Expected not-connected error, got nil")
	}
}

func TestWebSocketTransportCloseSuppressesReconnect(t *testing.T) {
	server := newEchoWebSocketServer(t)
	defer server.Close()

	transport := NewWebSocketTransport(WebSocketConfig{URL: wsURL(t, server), ReconnectDelay: 10 * time.Millisecond})
	ctx := context.Background()
	if err := transport.Connect(ctx); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if err := transport.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if transport.IsConnected() {
		t.Error("Expected IsConnected() false after Close")
	}
}

func TestWebSocketTransportReconnectsAfterAbnormalClose(t *testing.T) {
	upgrader := websocket.Upgrader{}
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		// Close immediately with an abnormal code to trigger the client's
		// reconnect policy.
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(1011, "server restarting"), time.Now().Add(time.Second))
		conn.Close()
	}))
	defer server.Close()

	transport := NewWebSocketTransport(WebSocketConfig{
		URL:                  wsURL(t, server),
		ReconnectDelay:       5 * time.Millisecond,
		MaxReconnectAttempts: 2,
	})
	if err := transport.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer transport.Close(context.Background())

	deadline := time.After(2 * time.Second)
	for hits < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 2 dial attempts from reconnect, got %d", hits)
		case <-time.After(10 * time.Millisecond):
		}
	}
}
