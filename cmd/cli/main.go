// Package main is the entry point for the panelquote CLI.
package main

import (
	"os"

	"panelquote/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
