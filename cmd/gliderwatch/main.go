// Package main is the entry point for gliderwatch.
package main

import (
	"os"

	"gliderwatch/cmd/gliderwatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
