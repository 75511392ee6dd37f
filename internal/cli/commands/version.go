package commands

import (
	"os"
	goruntime "runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aki/armlaunch/internal/cli/ui"
	"github.com/aki/armlaunch/internal/runtime"
	"github.com/aki/armlaunch/internal/runtime/setup"
)

// Set with -ldflags "-X github.com/aki/armlaunch/internal/cli/commands.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

type versionInfo struct {
	Version   string   `json:"version" yaml:"version"`
	GitCommit string   `json:"gitCommit" yaml:"gitCommit"`
	BuildDate string   `json:"buildDate" yaml:"buildDate"`
	GoVersion string   `json:"goVersion" yaml:"goVersion"`
	Platform  string   `json:"platform" yaml:"platform"`
	ROSDistro string   `json:"rosDistro,omitempty" yaml:"rosDistro,omitempty"`
	Runtimes  []string `json:"runtimes" yaml:"runtimes"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version, build and ROS environment information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setup.RegisterDefaults(); err != nil {
			return err
		}
		info := versionInfo{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: goruntime.Version(),
			Platform:  goruntime.GOOS + "/" + goruntime.GOARCH,
			ROSDistro: os.Getenv("ROS_DISTRO"),
			Runtimes:  runtime.List(),
		}
		if ui.GlobalFormatter.IsStructured() {
			return ui.GlobalFormatter.Output(info)
		}

		distro := info.ROSDistro
		if distro == "" {
			distro = ui.DimStyle.Render("not sourced")
		}
		ui.OutputLine("armlaunch %s (%s, built %s)", info.Version, info.GitCommit, info.BuildDate)
		ui.OutputLine("  %s %s on %s", ui.DimStyle.Render("go:"), info.GoVersion, info.Platform)
		ui.OutputLine("  %s %s", ui.DimStyle.Render("ROS_DISTRO:"), distro)
		ui.OutputLine("  %s %s", ui.DimStyle.Render("runtimes:"), strings.Join(info.Runtimes, ", "))
		return nil
	},
}
