package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aki/armlaunch/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server on stdio. Agents can describe
launches, list launch arguments and inspect runs. The server never starts
processes.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	c, err := loadContainer(cmd)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(c, Version)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c.Logger.Debug("starting MCP server", "transport", "stdio")
	if err := server.Start(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	fmt.Fprintln(os.Stderr, "Shutting down MCP server...")
	return nil
}
