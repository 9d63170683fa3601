// Package main is the entry point for the jiractx service.
package main

import (
	"os"

	"github.com/danielolaszy/jiractx/cmd"
	"github.com/danielolaszy/jiractx/internal/logging"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logging.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}
