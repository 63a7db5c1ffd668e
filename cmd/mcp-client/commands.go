package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/samestrin/mcp-hub/internal/mcp"
)

var serverFlag string

func addServerFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&serverFlag, "server", "", "Server id to target (required when the registry has more than one)")
}

func newListToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-tools",
		Short: "List the tools a server exposes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *mcp.Client, serverIDs []string) error {
				id, err := resolveServerID(serverFlag, serverIDs)
				if err != nil {
					return err
				}
				tools, err := client.ListTools(ctx, id)
				if err != nil {
					return err
				}
				return formatter().Print(tools, printTools)
			})
		},
	}
	addServerFlag(cmd)
	return cmd
}

func printTools(w io.Writer, data interface{}) {
	tools := data.([]mcp.Tool)
	for _, t := range tools {
		fmt.Fprintf(w, "%s\t%s\n", t.Name, t.Description)
	}
}

func newCallToolCmd() *cobra.Command {
	var argsJSON string
	cmd := &cobra.Command{
		Use:   "call-tool <name>",
		Short: "Call a tool by name with JSON-encoded arguments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arguments := map[string]interface{}{}
			if argsJSON != "" {
				if err := json.Unmarshal([]byte(argsJSON), &arguments); err != nil {
					return fmt.Errorf("parse --args: %w", err)
				}
			}
			return withClient(func(ctx context.Context, client *mcp.Client, serverIDs []string) error {
				id, err := resolveServerID(serverFlag, serverIDs)
				if err != nil {
					return err
				}
				result, err := client.CallTool(ctx, id, mcp.ToolCall{Name: args[0], Arguments: arguments})
				if err != nil {
					return err
				}
				return formatter().Print(result, printToolResult)
			})
		},
	}
	addServerFlag(cmd)
	cmd.Flags().StringVar(&argsJSON, "args", "", "JSON object of tool arguments")
	return cmd
}

func printToolResult(w io.Writer, data interface{}) {
	result := data.(*mcp.ToolResult)
	for _, item := range result.Content {
		fmt.Fprintln(w, item.Text)
	}
}

func newListResourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-resources",
		Short: "List the resources a server exposes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *mcp.Client, serverIDs []string) error {
				id, err := resolveServerID(serverFlag, serverIDs)
				if err != nil {
					return err
				}
				resources, err := client.ListResources(ctx, id)
				if err != nil {
					return err
				}
				return formatter().Print(resources, printResources)
			})
		},
	}
	addServerFlag(cmd)
	return cmd
}

func printResources(w io.Writer, data interface{}) {
	resources := data.([]mcp.Resource)
	for _, r := range resources {
		fmt.Fprintf(w, "%s\t%s\n", r.URI, r.Name)
	}
}

func newGetResourceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get-resource <uri>",
		Short: "Read one resource's content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *mcp.Client, serverIDs []string) error {
				id, err := resolveServerID(serverFlag, serverIDs)
				if err != nil {
					return err
				}
				content, err := client.GetResource(ctx, id, args[0])
				if err != nil {
					return err
				}
				return formatter().Print(content, func(w io.Writer, data interface{}) {
					fmt.Fprintln(w, data.(*mcp.ResourceContent).Text)
				})
			})
		},
	}
	addServerFlag(cmd)
	return cmd
}

func newListPromptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-prompts",
		Short: "List the prompts a server exposes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *mcp.Client, serverIDs []string) error {
				id, err := resolveServerID(serverFlag, serverIDs)
				if err != nil {
					return err
				}
				prompts, err := client.ListPrompts(ctx, id)
				if err != nil {
					return err
				}
				return formatter().Print(prompts, printPrompts)
			})
		},
	}
	addServerFlag(cmd)
	return cmd
}

func printPrompts(w io.Writer, data interface{}) {
	prompts := data.([]mcp.Prompt)
	for _, p := range prompts {
		fmt.Fprintf(w, "%s\t%s\n", p.Name, p.Description)
	}
}

func newGetPromptCmd() *cobra.Command {
	var argsJSON string
	cmd := &cobra.Command{
		Use:   "get-prompt <name>",
		Short: "Resolve a prompt by name with optional JSON-encoded string arguments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arguments := map[string]string{}
			if argsJSON != "" {
				if err := json.Unmarshal([]byte(argsJSON), &arguments); err != nil {
					return fmt.Errorf("parse --args: %w", err)
				}
			}
			return withClient(func(ctx context.Context, client *mcp.Client, serverIDs []string) error {
				id, err := resolveServerID(serverFlag, serverIDs)
				if err != nil {
					return err
				}
				messages, err := client.GetPrompt(ctx, id, args[0], arguments)
				if err != nil {
					return err
				}
				return formatter().Print(messages, printPromptMessages)
			})
		},
	}
	addServerFlag(cmd)
	cmd.Flags().StringVar(&argsJSON, "args", "", "JSON object of string prompt arguments")
	return cmd
}

func printPromptMessages(w io.Writer, data interface{}) {
	messages := data.([]mcp.PromptMessage)
	for _, m := range messages {
		fmt.Fprintf(w, "[%s] %s\n", m.Role, m.Content.Text)
	}
}
