package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aki/armlaunch/internal/descriptions"
	"github.com/aki/armlaunch/internal/launch"
	"github.com/aki/armlaunch/internal/runstate"
)

const maxCommandWidth = 72

// ProcessStats is the live resource usage of one entity process
type ProcessStats struct {
	CPUPercent float64 `json:"cpu_percent" yaml:"cpu_percent"`
	RSS        uint64  `json:"rss" yaml:"rss"`
}

// PrintPlan displays a resolved plan
func PrintPlan(plan *launch.Plan) {
	OutputLine("%s %s %s", RobotIcon, BoldStyle.Render(plan.Description), DimStyle.Render("("+plan.ID+")"))

	tbl := Section(ArgumentIcon, "Arguments", len(plan.Arguments), "NAME", "VALUE", "SOURCE")
	for _, a := range plan.Arguments {
		value := a.Value
		if a.Overridden {
			value += " *"
		}
		tbl.AddRow(a.Name, value, a.Source)
	}
	tbl.Print()

	tbl = Section(ProcessIcon, "Entities", len(plan.Entities), "NAME", "KIND", "ENABLED", "OUTPUT", "AFTER", "COMMAND")
	for _, e := range plan.Entities {
		enabled := SuccessStyle.Render("yes")
		if !e.Enabled {
			enabled = DimStyle.Render("no")
		}
		tbl.AddRow(e.Name, e.Kind, enabled, e.Output.String(), cell(strings.Join(e.DependsOn, ",")), truncate(strings.Join(e.Command, " "), maxCommandWidth))
	}
	tbl.Print()

	for _, e := range plan.Entities {
		if e.Condition != "" {
			OutputLine("  %s %s", DimStyle.Render(e.Name+":"), e.Condition)
		}
	}
	OutputLine("")
}

// PrintArguments displays the declared arguments of a description
func PrintArguments(source string, args []launch.DeclareLaunchArgument) {
	tbl := Section(ArgumentIcon, "Arguments of "+source, len(args), "NAME", "DEFAULT", "DESCRIPTION")
	for _, a := range args {
		def := WarningStyle.Render("(required)")
		if a.DefaultValue != nil {
			def = *a.DefaultValue
			if def == "" {
				def = "''"
			}
		}
		desc := a.Description
		if len(a.Choices) > 0 {
			desc += fmt.Sprintf(" [%s]", strings.Join(a.Choices, "|"))
		}
		tbl.AddRow(a.Name, def, desc)
	}
	tbl.Print()
	OutputLine("")
}

// PrintDescriptions displays the registered launch descriptions
func PrintDescriptions(entries []descriptions.Entry) {
	tbl := Section(RobotIcon, "Launch descriptions", len(entries), "SOURCE", "SUMMARY")
	for _, e := range entries {
		source := e.Source
		if source == descriptions.Default {
			source += " (default)"
		}
		tbl.AddRow(source, e.Summary)
	}
	tbl.Print()
	OutputLine("")
}

// PrintRun displays the state of a run. stats holds live usage by entity
// name and may be nil.
func PrintRun(run *runstate.Run, stats map[string]ProcessStats) {
	OutputLine("%s %s %s", RobotIcon, BoldStyle.Render(run.Description), DimStyle.Render("("+run.ID+")"))
	OutputLine("   %s %s", DimStyle.Render("Status:"), StatusStyle(run.Status).Render(string(run.Status)))
	OutputLine("   %s %s", DimStyle.Render("Runtime:"), run.Runtime)
	OutputLine("   %s %s", DimStyle.Render("Started:"), FormatTime(run.StartedAt))
	OutputLine("   %s %d", DimStyle.Render("Supervisor PID:"), run.SupervisorPID)
	if run.Error != "" {
		OutputLine("   %s %s", DimStyle.Render("Error:"), ErrorStyle.Render(run.Error))
	}

	if len(run.Arguments) > 0 {
		names := make([]string, 0, len(run.Arguments))
		for name := range run.Arguments {
			names = append(names, name)
		}
		sort.Strings(names)
		var parts []string
		for _, name := range names {
			parts = append(parts, name+":="+run.Arguments[name])
		}
		OutputLine("   %s %s", DimStyle.Render("Arguments:"), strings.Join(parts, " "))
	}

	tbl := Section(ProcessIcon, "Entities", len(run.Entities), "NAME", "STATUS", "PID", "EXIT", "RESTARTS", "CPU", "RSS", "UPDATED")
	for _, e := range run.Entities {
		pid, exit, cpu, rss := emptyCell, emptyCell, emptyCell, emptyCell
		if e.PID > 0 {
			pid = fmt.Sprintf("%d", e.PID)
		}
		if e.ExitCode != nil {
			exit = fmt.Sprintf("%d", *e.ExitCode)
		}
		if s, ok := stats[e.Name]; ok {
			cpu = fmt.Sprintf("%.1f%%", s.CPUPercent)
			rss = FormatSize(int64(s.RSS))
		}
		updated := emptyCell
		if !e.UpdatedAt.IsZero() {
			updated = FormatDuration(time.Since(e.UpdatedAt)) + " ago"
		}
		tbl.AddRow(e.Name, StatusStyle(e.Status).Render(string(e.Status)), pid, exit, e.Restarts, cpu, rss, updated)
	}
	tbl.Print()

	for _, e := range run.Entities {
		if e.Error != "" {
			OutputLine("  %s %s", ErrorStyle.Render(e.Name+":"), e.Error)
		}
	}
	OutputLine("")
}

// PrintRunList displays a summary line per run
func PrintRunList(runs []*runstate.Run) {
	if len(runs) == 0 {
		Info("No runs found")
		return
	}

	tbl := Section(RobotIcon, "Runs", len(runs), "ID", "DESCRIPTION", "STATUS", "ACTIVE", "STARTED")
	for _, r := range runs {
		tbl.AddRow(shortID(r.ID), r.Description, StatusStyle(r.Status).Render(string(r.Status)), len(r.Active()), FormatTime(r.StartedAt))
	}
	tbl.Print()
	OutputLine("")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
