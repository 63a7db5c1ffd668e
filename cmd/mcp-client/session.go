package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/samestrin/mcp-hub/internal/mcp"
	"github.com/samestrin/mcp-hub/internal/mcpconfig"
)

// withClient owns the Client hub for the duration of fn: it loads the
// registry, registers every server concurrently, signals the caller's
// context on interrupt, runs fn, and disconnects everything on the way out.
// Nothing else in this binary installs a signal handler.
func withClient(fn func(ctx context.Context, client *mcp.Client, serverIDs []string) error) error {
	reg, err := mcpconfig.LoadClientRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("load client registry: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := mcp.NewClient(mcp.ClientInfo{Name: "mcp-client", Version: version}, 0)
	defer client.Disconnect(context.Background())

	serverIDs := make([]string, len(reg.Servers))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range reg.Servers {
		i, s := i, s
		serverIDs[i] = s.ServerID
		g.Go(func() error {
			transport, err := mcp.NewTransport(s.ToTransportConfig())
			if err != nil {
				return fmt.Errorf("server %q: %w", s.ServerID, err)
			}
			if err := client.RegisterServer(gctx, s.ServerID, mcp.ServerConfig{Name: s.ServerID}, transport); err != nil {
				return fmt.Errorf("server %q: %w", s.ServerID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return fn(ctx, client, serverIDs)
}

// resolveServerID returns the explicit --server flag, or the registry's sole
// server when there is exactly one and none was given.
func resolveServerID(explicit string, serverIDs []string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if len(serverIDs) == 1 {
		return serverIDs[0], nil
	}
	return "", fmt.Errorf("multiple servers registered, pass --server to pick one of: %v", serverIDs)
}
