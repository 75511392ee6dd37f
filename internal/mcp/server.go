// Package mcp exposes launch descriptions and run state over the Model
// Context Protocol
package mcp

import (
	"context"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aki/armlaunch/internal/app"
)

// Server implements the MCP server using mcp-go
type Server struct {
	mcpServer *server.MCPServer
	container *app.Container
	version   string
}

// NewServer creates a new MCP server over the given container
func NewServer(container *app.Container, version string) (*Server, error) {
	if container == nil {
		return nil, fmt.Errorf("container is required")
	}

	mcpServer := server.NewMCPServer(
		"armlaunch",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithLogging(),
	)

	s := &Server{
		mcpServer: mcpServer,
		container: container,
		version:   version,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// registerTools registers all armlaunch tools
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("launch_describe",
		mcp.WithDescription(toolDescription("launch_describe")),
		mcp.WithString("description",
			mcp.Description("Launch description source key (optional, defaults to "+app.DefaultSource("")+")"),
		),
		mcp.WithObject("arguments",
			mcp.Description("Launch argument overrides, name to value (optional)"),
		),
		mcp.WithBoolean("run_commands",
			mcp.Description("Run command substitutions such as xacro instead of showing placeholders (optional)"),
		),
	), s.handleLaunchDescribe)

	s.mcpServer.AddTool(mcp.NewTool("launch_arguments",
		mcp.WithDescription(toolDescription("launch_arguments")),
		mcp.WithString("description",
			mcp.Description("Launch description source key (optional)"),
		),
	), s.handleLaunchArguments)

	s.mcpServer.AddTool(mcp.NewTool("launch_status",
		mcp.WithDescription(toolDescription("launch_status")),
		mcp.WithString("run_id",
			mcp.Description("Run ID or unique prefix (optional, defaults to the newest run)"),
		),
	), s.handleLaunchStatus)
}

// Start serves MCP over stdio until ctx is canceled
func (s *Server) Start(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcpServer).Listen(ctx, in, out)
}
