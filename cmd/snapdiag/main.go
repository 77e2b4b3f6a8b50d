// Package main is the entry point for the snapdiag CLI tool.
package main

import (
	"os"

	"github.com/good-yellow-bee/snapdiag/cmd/snapdiag/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
