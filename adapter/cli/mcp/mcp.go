// Package mcp holds the commands that expose taskrank to MCP clients.
package mcp

import "github.com/spf13/cobra"

// Cmd groups the MCP commands.
var Cmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve taskrank over the Model Context Protocol",
	Long: `Expose the scoring tools, the stored backlog and the planning prompts
to MCP clients over HTTP.`,
}

func init() {
	Cmd.AddCommand(serveCmd)
}
