package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"rocket-admin/internal/metadata"
)

// exitConfig is the exit status for configuration errors.
const exitConfig = 2

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if metadata.IsFatal(err) {
		return exitConfig
	}
	return 1
}
