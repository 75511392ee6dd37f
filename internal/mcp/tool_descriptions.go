package mcp

import "strings"

// ToolDescription provides enhanced descriptions for AI agents
type ToolDescription struct {
	Description string
	WhenToUse   []string
	NextTools   []string
}

var toolDescriptions = map[string]ToolDescription{
	"launch_describe": {
		Description: "Resolve a robot launch description into its plan: bound arguments, every node and process with its command line, output policy, condition and start dependencies. Nothing is started",
		WhenToUse: []string{
			"Before launching, to check which nodes a set of arguments enables",
			"When asked what the MoveIt launch runs or how the robot description is generated",
		},
		NextTools: []string{
			"launch_arguments - See which arguments can be overridden",
			"launch_status - Inspect a running launch",
		},
	},
	"launch_arguments": {
		Description: "List the arguments declared by a launch description with their defaults and descriptions. Arguments without a default are required",
		WhenToUse: []string{
			"Before describing or launching, to learn which overrides exist",
		},
		NextTools: []string{
			"launch_describe - Resolve the description with chosen arguments",
		},
	},
	"launch_status": {
		Description: "Show the state of a launch run: run status, and per entity status, PID, exit code and restarts",
		WhenToUse: []string{
			"When asked whether the robot launch is running",
			"After a launch stopped, to find which node failed",
		},
		NextTools: []string{
			"launch_describe - Compare with the planned entities",
		},
	},
}

// toolDescription renders the description of a tool with its usage hints
func toolDescription(name string) string {
	d, ok := toolDescriptions[name]
	if !ok {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(d.Description)
	if len(d.WhenToUse) > 0 {
		sb.WriteString("\n\nUse when:\n")
		for _, w := range d.WhenToUse {
			sb.WriteString("- ")
			sb.WriteString(w)
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
