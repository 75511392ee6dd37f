package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/samber/lo"

	"github.com/aki/armlaunch/internal/app"
	"github.com/aki/armlaunch/internal/descriptions"
	"github.com/aki/armlaunch/internal/launch"
	"github.com/aki/armlaunch/internal/runstate"
)

// argumentInfo is a declared launch argument as shown to agents
type argumentInfo struct {
	Name        string  `json:"name"`
	Default     *string `json:"default,omitempty"`
	Required    bool    `json:"required"`
	Description string  `json:"description,omitempty"`
}

func (s *Server) handleLaunchDescribe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	source, _ := args["description"].(string)
	source = app.DefaultSource(source)

	overrides, err := stringMap(args["arguments"])
	if err != nil {
		return nil, err
	}
	runCommands, _ := args["run_commands"].(bool)

	plan, err := s.container.Resolve(ctx, source, overrides, !runCommands)
	if err != nil {
		if errors.Is(err, launch.ErrUnknownDescription) {
			return nil, DescriptionNotFoundError(source, descriptionSources())
		}
		return nil, fmt.Errorf("failed to resolve launch description: %w", err)
	}

	meta := ToolResultMetadata{Warnings: s.container.Warnings(source)}
	if !runCommands {
		meta.InferredParameters = map[string]string{"run_commands": "false"}
	}
	return toolResult("launch_describe", plan, meta)
}

func (s *Server) handleLaunchArguments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	source, _ := args["description"].(string)
	source = app.DefaultSource(source)

	declared, err := s.container.Arguments(source)
	if err != nil {
		if errors.Is(err, launch.ErrUnknownDescription) {
			return nil, DescriptionNotFoundError(source, descriptionSources())
		}
		return nil, err
	}

	infos := lo.Map(declared, func(a launch.DeclareLaunchArgument, _ int) argumentInfo {
		return argumentInfo{
			Name:        a.Name,
			Default:     a.DefaultValue,
			Required:    a.Required(),
			Description: a.Description,
		}
	})

	return toolResult("launch_arguments", map[string]any{
		"description": source,
		"arguments":   infos,
	}, ToolResultMetadata{})
}

func (s *Server) handleLaunchStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	id, _ := args["run_id"].(string)

	run, err := s.container.Run(ctx, id)
	if err != nil {
		if errors.Is(err, runstate.ErrRunNotFound) {
			return nil, RunNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	var meta ToolResultMetadata
	if id == "" {
		meta.InferredParameters = map[string]string{"run_id": run.ID}
	}
	return toolResult("launch_status", run, meta)
}

// stringMap converts a JSON object of scalars into launch argument values
func stringMap(v interface{}) (map[string]string, error) {
	if v == nil {
		return nil, nil
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid arguments: expected an object")
	}

	out := make(map[string]string, len(obj))
	for k, raw := range obj {
		switch val := raw.(type) {
		case string:
			out[k] = val
		case bool, float64:
			out[k] = fmt.Sprint(val)
		default:
			return nil, fmt.Errorf("invalid value for argument %s: expected a string, boolean or number", k)
		}
	}
	return out, nil
}

func descriptionSources() []string {
	return lo.Map(descriptions.List(), func(e descriptions.Entry, _ int) string {
		return e.Source
	})
}
