package main

import (
	"os"

	"github.com/brewtools/brewdev/cmd/cli"
	"github.com/brewtools/brewdev/internal/ui"
)

// main executes the brewdev command-line application.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		ui.NewConsole(os.Stderr).Error(executionError.Error())
		os.Exit(1)
	}
}
