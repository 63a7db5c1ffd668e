// Command mcp-client loads a server registry file, connects to every
// registered server concurrently, and offers resource/tool/prompt
// operations against them from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/samestrin/mcp-hub/pkg/output"
)

var (
	registryPath string
	jsonOutput   bool
	minimalOut   bool
	version      = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:     "mcp-client",
	Short:   "Talk to MCP servers registered in a client registry file",
	Version: version,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&registryPath, "registry", "servers.yaml", "Path to the client registry file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&minimalOut, "min", false, "Output in minimal/token-optimized format")

	rootCmd.AddCommand(
		newListToolsCmd(),
		newCallToolCmd(),
		newListResourcesCmd(),
		newGetResourceCmd(),
		newListPromptsCmd(),
		newGetPromptCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func formatter() *output.Formatter {
	return output.New(jsonOutput, minimalOut, os.Stdout)
}
