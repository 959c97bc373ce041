// Package main is the entry point for leta: both the CLI front-end and,
// under the hidden "daemon run" subcommand, the daemon process itself
// (SPEC_FULL.md: "both live in one binary").
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/leta/internal/cliapp"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) > 0 && args[0] == "daemon" && len(args) > 1 && args[1] == "run" {
		return runDaemon()
	}
	if len(args) > 0 && (args[0] == "--version" || args[0] == "-v") {
		fmt.Printf("leta %s (%s, %s)\n", version, commit, date)
		return 0
	}
	return cliapp.Run(args)
}

// runDaemon is the hidden foreground daemon entrypoint; the CLI auto-spawns
// it detached (cliapp's ensureDaemon) and never invokes it interactively.
func runDaemon() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := cliapp.NewDaemon()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize daemon: %v\n", err)
		return 1
	}
	defer d.Close()

	if err := d.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: daemon exited: %v\n", err)
		return 1
	}
	return 0
}
