// Package main is the entry point for the tripctl command.
// Its sole responsibility is handing control to the command tree and mapping
// failure to a non-zero exit; all wiring lives in internal/cli.
package main

import (
	"fmt"
	"os"

	"github.com/tmckay/tripplanner/client/internal/cli"
)

func main() {
	root := cli.New(os.Stdout)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
