package mcp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// NextTool points the client at a follow-up tool
type NextTool struct {
	Tool   string `json:"tool"`
	Reason string `json:"reason,omitempty"`
}

// ToolResultMetadata travels next to every tool result under _metadata
type ToolResultMetadata struct {
	ToolUsed string `json:"tool_used"`
	// InferredParameters lists values the tool picked because the
	// caller left them out, e.g. the newest run for launch_status
	InferredParameters map[string]string `json:"inferred_parameters,omitempty"`
	// Warnings carries resolution notes such as stale controller names
	Warnings           []string   `json:"warnings,omitempty"`
	SuggestedNextTools []NextTool `json:"suggested_next_tools,omitempty"`
}

type toolEnvelope struct {
	Result   any                `json:"result"`
	Metadata ToolResultMetadata `json:"_metadata"`
}

// toolResult wraps content and metadata into a single JSON text result
func toolResult(tool string, content any, meta ToolResultMetadata) (*mcp.CallToolResult, error) {
	meta.ToolUsed = tool
	meta.SuggestedNextTools = nextTools(tool)

	data, err := json.MarshalIndent(toolEnvelope{Result: content, Metadata: meta}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s result: %w", tool, err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// nextTools parses the "tool - reason" entries of a tool description
func nextTools(name string) []NextTool {
	d, ok := toolDescriptions[name]
	if !ok {
		return nil
	}
	out := make([]NextTool, 0, len(d.NextTools))
	for _, entry := range d.NextTools {
		tool, reason, _ := strings.Cut(entry, " - ")
		out = append(out, NextTool{Tool: tool, Reason: reason})
	}
	return out
}
