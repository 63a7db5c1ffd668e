package mcp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPTransportConnectProbesEndpoint(t *testing.T) {
	var gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req Request
		_ = json.Unmarshal(body, &req)
		gotMethod = req.Method
		w.Header().Set("Content-Type", "application/json")
		resp, _ := json.Marshal(Response{JSONRPC: "2.0", ID: req.ID, Result: json.RawMessage(`{"pong":true}`)})
		_, _ = w.Write(resp)
	}))
	defer server.Close()

	transport := NewHTTPTransport(HTTPConfig{Endpoint: server.URL, Timeout: time.Second})
	if err := transport.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if !transport.IsConnected() {
		t.Error("Expected IsConnected() true after a successful probe")
	}
	if gotMethod != "ping" {
		t.Errorf("probe method = %s, want ping", gotMethod)
	}
}

func TestHTTPTransportConnectFailsOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	transport := NewHTTPTransport(HTTPConfig{Endpoint: server.URL, Timeout: time.Second})
	if err := transport.Connect(context.Background()); err == nil {
		t.Fatal("Expected error from a 500 response, got nil")
	}
	if transport.IsConnected() {
		t.Error("Expected IsConnected() false after a failed probe")
	}
}

func TestHTTPTransportSendDeliversMessageEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req Request
		_ = json.Unmarshal(body, &req)
		if req.Method == "ping" {
			resp, _ := json.Marshal(Response{JSONRPC: "2.0", ID: req.ID, Result: json.RawMessage(`{"pong":true}`)})
			_, _ = w.Write(resp)
			return
		}
		resp, _ := json.Marshal(Response{JSONRPC: "2.0", ID: req.ID, Result: json.RawMessage(`{"tools":[]}`)})
		_, _ = w.Write(resp)
	}))
	defer server.Close()

	transport := NewHTTPTransport(HTTPConfig{Endpoint: server.URL, Timeout: time.Second})
	ctx := context.Background()
	if err := transport.Connect(ctx); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	// Drain whatever the connect probe queued (its own response plus the
	// EventConnect marker) before sending the real request.
draining:
	for {
		select {
		case <-transport.Events():
		default:
			break draining
		}
	}

	req, _ := json.Marshal(Request{JSONRPC: "2.0", ID: json.RawMessage("1"), Method: "tools/list"})
	if err := transport.Send(ctx, req); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	select {
	case ev := <-transport.Events():
		if ev.Kind != EventMessage {
			t.Fatalf("Kind = %v, want EventMessage", ev.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for response event")
	}
}

func TestHTTPTransportSendRequiresConnect(t *testing.T) {
	transport := NewHTTPTransport(HTTPConfig{Endpoint: "http://127.0.0.1:1"})
	err := transport.Send(context.Background(), []byte(`{}`))
	if err == nil {
		t.Fatal("Expected not-connected error, got nil")
	}
}
