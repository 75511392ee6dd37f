package main

import (
	"os"

	"github.com/aki/armlaunch/internal/cli/commands"
	"github.com/aki/armlaunch/internal/cli/ui"
)

func main() {
	if err := commands.Execute(); err != nil {
		ui.Error("%v", err)
		os.Exit(1)
	}
}
