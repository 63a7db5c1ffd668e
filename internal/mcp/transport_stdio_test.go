package mcp

import (
	"context"
	"testing"
	"time"
)

// TestStdioTransportRoundTrip drives a real subprocess ("cat") so a line
// written to its stdin comes back unchanged on stdout.
func TestStdioTransportRoundTrip(t *testing.T) {
	transport := NewStdioTransport(StdioConfig{Command: "cat"})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := transport.Connect(ctx); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer transport.Close(ctx)

	msg := []byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`)
	if err := transport.Send(ctx, msg); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	select {
	case ev := <-transport.Events():
		if ev.Kind == EventConnect {
			// Drain the initial connect event, if delivered after Send raced it.
			ev = <-transport.Events()
		}
		if ev.Kind != EventMessage {
			t.Fatalf("Kind = %v, want EventMessage", ev.Kind)
		}
		if string(ev.Message) != string(msg) {
			t.Errorf("Message = %s, want %s", ev.Message, msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for echoed message")
	}
}

func TestStdioTransportSendBeforeConnect(t *testing.T) {
	transport := NewStdioTransport(StdioConfig{Command: "cat"})
	err := transport.Send(context.Background(), []byte(`{}`))
	if err == nil {
		t.Fatal("Expected not-connected error, got nil")
	}
}

func TestStdioTransportCloseIsIdempotent(t *testing.T) {
	transport := NewStdioTransport(StdioConfig{Command: "cat"})
	ctx := context.Background()
	if err := transport.Connect(ctx); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := transport.Close(ctx); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := transport.Close(ctx); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}

// TestStdioTransportCloseEscalatesToSIGKILL spawns a child that traps and
// ignores SIGTERM, so Close must fall through the 5s-SIGTERM stage to the
// SIGKILL stage to ever observe the child exit. It verifies Close takes at
// least the 5s SIGTERM grace period and returns inside a bound comfortably
// above the 5s+2s escalation window.
func TestStdioTransportCloseEscalatesToSIGKILL(t *testing.T) {
	transport := NewStdioTransport(StdioConfig{
		Command: "sh",
		Args:    []string{"-c", `trap "" TERM; sleep 30`},
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := transport.Connect(ctx); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	start := time.Now()
	done := make(chan error, 1)
	go func() { done <- transport.Close(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		elapsed := time.Since(start)
		if elapsed < 5*time.Second {
			t.Fatalf("Close() returned after %v, want at least 5s (SIGTERM grace period) since the child ignores SIGTERM", elapsed)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("Close() did not return; SIGKILL escalation did not fire")
	}
}

func TestStdioTransportRejectsMalformedLine(t *testing.T) {
	transport := NewStdioTransport(StdioConfig{Command: "cat"})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := transport.Connect(ctx); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer transport.Close(ctx)

	if err := transport.Send(ctx, []byte(`not json`)); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	for {
		select {
		case ev := <-transport.Events():
			if ev.Kind == EventConnect {
				continue
			}
			if ev.Kind != EventError {
				t.Fatalf("Kind = %v, want EventError", ev.Kind)
			}
			return
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for parse-error event")
		}
	}
}
