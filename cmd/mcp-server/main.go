// Command mcp-server loads a server descriptor, mounts the configured
// providers, and serves the MCP protocol over stdio, WebSocket, or HTTP.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/samestrin/mcp-hub/internal/mcp"
	"github.com/samestrin/mcp-hub/internal/mcpconfig"
	"github.com/samestrin/mcp-hub/internal/providers/clarification"
	"github.com/samestrin/mcp-hub/internal/providers/filesystem"
	"github.com/samestrin/mcp-hub/internal/providers/semantic"
	"github.com/samestrin/mcp-hub/internal/providers/web"
)

var (
	descriptorPath string
	version        = "0.1.0"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "mcp-server",
		Short:   "Serve MCP resources, tools, and prompts from a descriptor file",
		Version: version,
		RunE:    run,
	}
	rootCmd.Flags().StringVar(&descriptorPath, "config", "mcp.yaml", "Path to the server descriptor (.toml or .yaml)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run owns the Server for the life of the process: it is created here, and
// nowhere else installs a signal handler or a lifecycle hook for it. This
// keeps shutdown explicit and local instead of a package-level singleton
// reacting to signals from inside internal/mcp.
func run(cmd *cobra.Command, args []string) error {
	descriptor, err := mcpconfig.LoadServerDescriptor(descriptorPath)
	if err != nil {
		return fmt.Errorf("load server descriptor: %w", err)
	}

	server := mcp.NewServer(descriptor.ToServerConfig())
	server.SetLogger(os.Stderr, descriptor.Verbose || os.Getenv("METIS_VERBOSE") == "true")

	closers, err := mountProviders(server, descriptor.Mounts)
	if err != nil {
		return err
	}
	defer closeAll(closers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch descriptor.Transport {
	case "websocket":
		return serveWebSocket(ctx, server, descriptor.Listen)
	case "http":
		return serveHTTP(ctx, server, descriptor.Listen)
	default:
		return serveStdio(ctx, server)
	}
}

type closer interface{ Close() error }

func closeAll(closers []closer) {
	for _, c := range closers {
		c.Close()
	}
}

// mountProviders builds and registers one provider per configured mount.
// Any provider that opens a resource worth closing (a db handle, a network
// client) is returned so run can close it on shutdown.
func mountProviders(server *mcp.Server, mounts []mcpconfig.ProviderMount) ([]closer, error) {
	var closers []closer
	for _, mount := range mounts {
		switch mount.Kind {
		case "filesystem":
			roots := []string{mount.Settings["root"]}
			lockDir := mount.Settings["lock_dir"]
			p := filesystem.New(roots, lockDir)
			server.RegisterResourceProvider(mount.Namespace, p)
			server.RegisterToolProvider(mount.Namespace, p)

		case "semantic":
			cfg := semantic.Config{
				Host:           mount.Settings["host"],
				APIKey:         mount.Settings["api_key"],
				CollectionName: mount.Settings["collection"],
			}
			p, err := semantic.New(cfg)
			if err != nil {
				return nil, fmt.Errorf("mount %q: %w", mount.Namespace, err)
			}
			server.RegisterToolProvider(mount.Namespace, p)
			closers = append(closers, p)

		case "clarification":
			store, err := clarification.Open(mount.Settings["db_path"])
			if err != nil {
				return nil, fmt.Errorf("mount %q: %w", mount.Namespace, err)
			}
			server.RegisterPromptProvider(mount.Namespace, clarification.NewProvider(store))
			closers = append(closers, store)

		case "web":
			p, err := web.New(mount.Settings["cache_path"])
			if err != nil {
				return nil, fmt.Errorf("mount %q: %w", mount.Namespace, err)
			}
			server.RegisterToolProvider(mount.Namespace, p)
			closers = append(closers, p)

		default:
			return nil, fmt.Errorf("unknown provider kind %q for mount %q", mount.Kind, mount.Namespace)
		}
	}
	return closers, nil
}

func serveStdio(ctx context.Context, server *mcp.Server) error {
	conn := mcp.NewStdioServerConnection(os.Stdin, os.Stdout)
	inbound := conn.Inbound()
	server.RegisterConnection("stdio", conn, inbound)

	<-ctx.Done()
	return server.UnregisterConnection(context.Background(), "stdio")
}

func serveWebSocket(ctx context.Context, server *mcp.Server, addr string) error {
	httpServer := &http.Server{Addr: addr, Handler: mcp.WebSocketUpgradeHandler(server)}
	return serveAndWaitForShutdown(ctx, httpServer)
}

func serveHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	httpServer := &http.Server{Addr: addr, Handler: mcp.HTTPHandler(server)}
	return serveAndWaitForShutdown(ctx, httpServer)
}

func serveAndWaitForShutdown(ctx context.Context, httpServer *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), mcp.GracefulShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
