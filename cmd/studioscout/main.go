// Package main is the entry point for the studioscout CLI.
package main

import (
	"os"

	"github.com/studioscout/studioscout/cmd/studioscout/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
